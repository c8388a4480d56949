package core

import "testing"

type recordingControls struct {
	maximized  int
	restored   int
	fullscreen []bool
	titles     []string
}

func (r *recordingControls) Maximize()             { r.maximized++ }
func (r *recordingControls) Restore()              { r.restored++ }
func (r *recordingControls) SetFullscreen(b bool)  { r.fullscreen = append(r.fullscreen, b) }
func (r *recordingControls) SetTitle(title string) { r.titles = append(r.titles, title) }

func TestSharedStateStartsUnreported(t *testing.T) {
	s := NewSharedState()
	w, h, scale := s.Load()
	if w != Unreported || h != Unreported || scale != Unreported {
		t.Errorf("Load: expected all %d, got (%d, %d, %d)", Unreported, w, h, scale)
	}
	if s.IsClosed() {
		t.Errorf("IsClosed: expected false for a new state")
	}

	s.ReportSize(800, 600)
	s.ReportScale(2)
	s.MarkClosed()
	w, h, scale = s.Load()
	if w != 800 || h != 600 || scale != 2 {
		t.Errorf("Load: expected (800, 600, 2), got (%d, %d, %d)", w, h, scale)
	}
	if !s.IsClosed() {
		t.Errorf("IsClosed: expected true after MarkClosed")
	}
}

func TestCommandsApply(t *testing.T) {
	controls := &recordingControls{}
	commands := []Command{
		SetMaximized(true),
		SetMaximized(false),
		SetFullscreen(true),
		SetTitle("hello"),
		SetFullscreen(false),
	}
	for _, cmd := range commands {
		cmd.Apply(controls)
	}

	if controls.maximized != 1 || controls.restored != 1 {
		t.Errorf("maximize/restore: expected 1/1, got %d/%d", controls.maximized, controls.restored)
	}
	if len(controls.fullscreen) != 2 || !controls.fullscreen[0] || controls.fullscreen[1] {
		t.Errorf("fullscreen: expected [true false], got %v", controls.fullscreen)
	}
	if len(controls.titles) != 1 || controls.titles[0] != "hello" {
		t.Errorf("titles: expected [hello], got %v", controls.titles)
	}
}

func TestHeaderBarText(t *testing.T) {
	tests := []struct {
		in      string
		want    HeaderBar
		wantErr bool
	}{
		{"full", HeaderBarFull, false},
		{"", HeaderBarFull, false},
		{"over_content", HeaderBarOverContent, false},
		{"OverContent", HeaderBarOverContent, false},
		{"none", HeaderBarNone, false},
		{"floating", HeaderBarFull, true},
	}

	for _, tt := range tests {
		var h HeaderBar
		err := h.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q): expected error=%v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if err == nil && h != tt.want {
			t.Errorf("UnmarshalText(%q): expected %v, got %v", tt.in, tt.want, h)
		}
	}

	if HeaderBarNone.Decorated() || HeaderBarOverContent.Decorated() || !HeaderBarFull.Decorated() {
		t.Errorf("Decorated: only HeaderBarFull should be decorated")
	}
}

func TestColorLerp(t *testing.T) {
	a := Color{R: 0, G: 0, B: 0, A: 0.5}
	b := Color{R: 1, G: 0.5, B: 0.25, A: 1}
	got := a.Lerp(b, 0.5)
	want := Color{R: 0.5, G: 0.25, B: 0.125, A: 1}
	if got != want {
		t.Errorf("Lerp: expected %v, got %v", want, got)
	}
}
