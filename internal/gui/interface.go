package gui

import (
	"imglabel/internal/catalog"
	"imglabel/internal/report"
)

// LabelButton ties one button to the label it files into.
type LabelButton struct {
	LabelIndex int
	Text       string // Label name with the shortcut bracketed
}

// Buttons returns one LabelButton per label, in label order.
func Buttons(cat *catalog.Catalog) []LabelButton {
	buttons := make([]LabelButton, 0, cat.Len())
	for _, l := range cat.Labels() {
		buttons = append(buttons, LabelButton{LabelIndex: l.Index, Text: l.DisplayName()})
	}
	return buttons
}

type options struct {
	reporter *report.Reporter
}

// Option configures an App.
type Option func(*options)

// WithReporter echoes move failures and directory notices to the console.
func WithReporter(r *report.Reporter) Option {
	return func(o *options) { o.reporter = r }
}
