// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionReport summarizes one finished conversion job. The convert
// command serializes it to YAML when --report is given.
type ConversionReport struct {
	// Input is the DjVu document the job started from.
	Input string `json:"input" yaml:"input"`

	// Output is the PDF the job produced.
	Output string `json:"output" yaml:"output"`

	// Pages is the page count reported by the metadata tool.
	Pages int `json:"pages" yaml:"pages"`

	// TextlessPages lists pages (1-based) for which the OCR tool
	// reported no embedded text; those pages carry no text layer.
	TextlessPages []int `json:"textless_pages,omitempty" yaml:"textless_pages,omitempty"`

	// TOCEntries is the number of bookmark entries carried into the PDF.
	TOCEntries int `json:"toc_entries" yaml:"toc_entries"`

	// Duration is the wall-clock time the conversion took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// ConvertedAt is when the conversion finished.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
