package dialog

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProber counts scan cycles and can be made to fail every cycle.
type fakeProber struct {
	cycles atomic.Int32
	err    error
	found  int
}

func (f *fakeProber) dismiss() (int, error) {
	f.cycles.Add(1)
	return f.found, f.err
}

func TestWatcher_StopIsPromptAndBounded(t *testing.T) {
	p := &fakeProber{}
	w := newWatcher(p, 10*time.Millisecond)
	w.Start()

	// Let it run a few cycles.
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	if !w.Stop(time.Second) {
		t.Fatal("watcher did not confirm exit within the join timeout")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("stop took too long: %v", elapsed)
	}
	if p.cycles.Load() == 0 {
		t.Error("watcher never ran a scan cycle")
	}
}

func TestWatcher_SurvivesProberErrors(t *testing.T) {
	p := &fakeProber{err: errors.New("window enumeration failed")}
	w := newWatcher(p, 5*time.Millisecond)
	w.Start()

	time.Sleep(40 * time.Millisecond)

	// Errors are swallowed and logged; the loop must still be alive and
	// still responsive to Stop.
	if p.cycles.Load() < 2 {
		t.Errorf("loop should keep polling through errors, got %d cycles", p.cycles.Load())
	}
	if !w.Stop(time.Second) {
		t.Fatal("watcher did not stop after repeated prober errors")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w := newWatcher(&fakeProber{}, 10*time.Millisecond)
	w.Start()

	if !w.Stop(time.Second) {
		t.Fatal("first stop failed")
	}
	// Second stop must not panic on the already-closed channel.
	if !w.Stop(time.Second) {
		t.Fatal("second stop failed")
	}
}

func TestIsCertDialogTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Select a certificate", true},
		{"SELECT A CERTIFICATE", true},
		{"Select a certificate - Google Chrome", true},
		{"Выбор сертификата", true},
		{"Выберите сертификат для проверки подлинности", true},
		{"Zertifikat auswählen", true},
		{"Sélectionner un certificat", true},
		{"Downloads", false},
		{"", false},
		{"Certificate Manager", false},
	}

	for _, tt := range tests {
		if got := isCertDialogTitle(tt.title); got != tt.want {
			t.Errorf("isCertDialogTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
