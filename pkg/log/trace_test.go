package log

import (
	"fmt"
	"testing"
)

type recorder struct {
	lines []string
}

func (r *recorder) Infof(format string, args ...interface{})  {}
func (r *recorder) Errorf(format string, args ...interface{}) {}
func (r *recorder) Fatal(str string)                          {}
func (r *recorder) Debugf(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"", 0, false},
		{"copper", Copper, false},
		{"Copper, blitter", Copper | Blitter, false},
		{"all", All, false},
		{"paula", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategories(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %b, got %b", tt.want, got)
			}
		})
	}
}

func TestConfig_Tracef(t *testing.T) {
	r := &recorder{}
	c := NewConfig(r, Copper)
	c.Tracef(Copper, "pc %06X", 0x100)
	c.Tracef(Blitter, "ignored")

	if len(r.lines) != 1 || r.lines[0] != "pc 000100" {
		t.Errorf("expected one copper line, got %v", r.lines)
	}

	var nilConfig *Config
	if nilConfig.On(All) {
		t.Errorf("expected nil config to trace nothing")
	}
	nilConfig.Tracef(Copper, "must not panic")
}
