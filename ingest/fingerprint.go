package ingest

import (
	"encoding/hex"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"saltbath/model"
)

// Fingerprint hashes the batch content in order. Two batches with the same records
// in the same order get the same fingerprint whatever file they came from.
func Fingerprint(records []model.Record) string {
	digest := xxhash.New()
	buf := make([]byte, 0, 64)
	for _, r := range records {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(r.Year), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(r.Month), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(r.Day), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(r.HeatNumber), 10)
		buf = append(buf, ';')
		buf = append(buf, r.CompoundLayer...)
		buf = append(buf, ';')
		buf = append(buf, r.DiffusionDepth...)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(r.PartitionYear), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(r.Serial), 10)
		buf = append(buf, '\n')
		digest.Write(buf)
	}
	return hex.EncodeToString(digest.Sum(nil))
}
