package render

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ExportReportPDF prints an HTML report document to a PDF file with a headless
// browser.
func ExportReportPDF(ctx context.Context, document, path string) error {
	// Leakless(false) keeps antivirus software from blocking the helper binary.
	u, err := launcher.New().
		Headless(true).
		Leakless(false).
		Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(document); err != nil {
		return fmt.Errorf("failed to load report document: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:       true,
		PrintBackground: true,
	})
	if err != nil {
		return fmt.Errorf("failed to print PDF: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("failed to read PDF stream: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
