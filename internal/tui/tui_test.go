package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/importer"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/prefs"
	"github.com/derpfest/customizations/internal/settings"
	"github.com/derpfest/customizations/internal/source"
)

const testKeybox = `<?xml version="1.0"?>
<AndroidAttestation>
<NumberOfKeyboxes>1</NumberOfKeyboxes>
<Keybox DeviceID="test">
<Key algorithm="ecdsa">
<PrivateKey format="pem">key</PrivateKey>
<CertificateChain><NumberOfCertificates>3</NumberOfCertificates>
<Certificate format="pem">a</Certificate><Certificate format="pem">b</Certificate><Certificate format="pem">c</Certificate>
</CertificateChain>
</Key>
<Key algorithm="rsa">
<PrivateKey format="pem">key</PrivateKey>
<CertificateChain><NumberOfCertificates>3</NumberOfCertificates>
<Certificate format="pem">a</Certificate><Certificate format="pem">b</Certificate><Certificate format="pem">c</Certificate>
</CertificateChain>
</Key>
</Keybox>
</AndroidAttestation>
`

type countingStopper struct{ calls int }

func (c *countingStopper) ForceStop(context.Context, string) error { c.calls++; return nil }

func newTestModel(t *testing.T) (Model, *settings.MemoryStore, *countingStopper) {
	t.Helper()
	i18n.Init("en")
	store := settings.NewMemoryStore()
	stopper := &countingStopper{}
	m := newModel(context.Background(), Options{
		Import: importer.Options{
			Store:   store,
			Opener:  source.NewResolver(source.SFTPOptions{}),
			Stopper: stopper,
		},
		StartDir: t.TempDir(),
	})
	return drain(t, m, m.Init()), store, stopper
}

// drain runs cmd and feeds the result back into the model for as long as
// the model answers with its own store messages. Picker and cursor blink
// commands are not executed.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		switch msg.(type) {
		case dataMsg, doneMsg:
		default:
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestMenuNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.screen != menuScreen {
		t.Fatalf("expected menu screen, got %d", m.screen)
	}

	m, _ = press(t, m, "down", "enter")
	if m.screen != statusBarScreen {
		t.Fatalf("expected status bar screen, got %d", m.screen)
	}
	m, _ = press(t, m, "esc")
	if m.screen != menuScreen || m.cursor != 1 {
		t.Fatalf("expected menu with cursor on status bar, got screen %d cursor %d", m.screen, m.cursor)
	}
	m, _ = press(t, m, "down", "down", "down", "enter")
	if m.screen != qsScreen {
		t.Fatalf("expected QS screen, got %d", m.screen)
	}
}

func TestMiscImportByLocation(t *testing.T) {
	m, store, _ := newTestModel(t)
	path := filepath.Join(m.startDir, "keybox.xml")
	if err := os.WriteFile(path, []byte(testKeybox), 0o600); err != nil {
		t.Fatal(err)
	}

	m, _ = press(t, m, "enter") // Misc
	m, _ = press(t, m, "enter") // load keybox
	if m.screen != pickerScreen {
		t.Fatalf("expected picker, got %d", m.screen)
	}
	if m.ctrl.State(payload.Keybox) != importer.StatePicking {
		t.Fatalf("expected Picking, got %s", m.ctrl.State(payload.Keybox))
	}
	if got := m.picker.AllowedTypes; len(got) != 1 || got[0] != ".xml" {
		t.Fatalf("unexpected allowed types %v", got)
	}

	m, _ = press(t, m, "/")
	if m.screen != locationScreen {
		t.Fatalf("expected location input, got %d", m.screen)
	}
	m.location.SetValue(path)
	m, cmd := press(t, m, "enter")
	m = drain(t, m, cmd)

	if m.screen != miscScreen {
		t.Fatalf("expected to return to Misc, got %d", m.screen)
	}
	if m.message != "Keybox data loaded" || m.isError {
		t.Fatalf("unexpected status %q (error %v)", m.message, m.isError)
	}
	if _, ok, _ := store.GetString(context.Background(), payload.Keybox.DataKey()); !ok {
		t.Fatal("expected keybox_data to be stored")
	}
	if !m.data.summaries[payload.Keybox].Loaded {
		t.Fatal("expected refreshed summary to be loaded")
	}
	if !strings.Contains(m.View(), "Type: RSA + ECDSA") {
		t.Fatalf("expected summary in view:\n%s", m.View())
	}
}

func TestPickerCancelReturnsToIdle(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, "enter", "down", "down", "enter") // Misc, load PIF
	if m.pickKind != payload.Pif || m.screen != pickerScreen {
		t.Fatalf("expected PIF picker, got kind %s screen %d", m.pickKind, m.screen)
	}
	m, cmd := press(t, m, "esc")
	m = drain(t, m, cmd)
	if m.screen != miscScreen {
		t.Fatalf("expected Misc after cancel, got %d", m.screen)
	}
	if st := m.ctrl.State(payload.Pif); st != importer.StateIdle {
		t.Fatalf("expected Idle after cancel, got %s", st)
	}
	if m.message != "" {
		t.Fatalf("expected empty status after cancel, got %q", m.message)
	}
}

func TestPifImportAndDeleteStopPackages(t *testing.T) {
	m, store, stopper := newTestModel(t)
	path := filepath.Join(m.startDir, "pif.json")
	if err := os.WriteFile(path, []byte(`{"FINGERPRINT":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	m, _ = press(t, m, "enter", "down", "down", "enter", "/")
	m.location.SetValue(path)
	m, cmd := press(t, m, "enter")
	m = drain(t, m, cmd)
	if m.message != "PIF data loaded" {
		t.Fatalf("unexpected status %q", m.message)
	}
	if stopper.calls != 2 {
		t.Fatalf("expected both packages stopped, got %d calls", stopper.calls)
	}

	// cursor is still on "load PIF"; the delete row follows it
	m, cmd = press(t, m, "down", "enter")
	m = drain(t, m, cmd)
	if m.message != "PIF data cleared" {
		t.Fatalf("unexpected status %q", m.message)
	}
	if _, ok, _ := store.GetString(context.Background(), payload.Pif.DataKey()); ok {
		t.Fatal("expected pif_data to be deleted")
	}
	if stopper.calls != 4 {
		t.Fatalf("expected packages stopped again on delete, got %d calls", stopper.calls)
	}
}

func TestDeleteDisabledWhenNotLoaded(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, "enter", "down")
	if m.deleteEnabled(payload.Keybox) {
		t.Fatal("expected delete to be disabled")
	}
	_, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Fatal("expected no command for a disabled delete")
	}
}

func TestStatusBarToggle(t *testing.T) {
	m, store, _ := newTestModel(t)
	m, _ = press(t, m, "down", "enter")
	if !m.data.toggles[prefs.MicCamera.Name] {
		t.Fatal("expected mic/camera indicator on by default")
	}
	m, cmd := press(t, m, "enter")
	m = drain(t, m, cmd)

	v, err := store.GetInt(context.Background(), settings.KeyMicCameraPrivacyIndicators, 1)
	if err != nil || v != 0 {
		t.Fatalf("expected stored 0, got %d (%v)", v, err)
	}
	if m.data.toggles[prefs.MicCamera.Name] {
		t.Fatal("expected refreshed toggle to be off")
	}
	if !strings.Contains(m.message, "Off") {
		t.Fatalf("unexpected status %q", m.message)
	}
}

func TestQSCycleSwitchesSummary(t *testing.T) {
	m, store, _ := newTestModel(t)
	m, _ = press(t, m, "down", "down", "enter")
	if m.data.cycleSummary != "Shows today's data usage" {
		t.Fatalf("unexpected initial summary %q", m.data.cycleSummary)
	}

	// the info row cannot take the cursor
	m, _ = press(t, m, "down")
	if m.cursor != 0 {
		t.Fatalf("expected cursor to stay on the cycle row, got %d", m.cursor)
	}

	m, cmd := press(t, m, "enter")
	m = drain(t, m, cmd)
	if v, _ := store.GetInt(context.Background(), settings.KeyDataUsageCycleType, 0); v != prefs.CycleWeekly {
		t.Fatalf("expected weekly stored, got %d", v)
	}
	if m.data.cycleSummary != "Shows this week's data usage" {
		t.Fatalf("unexpected summary %q", m.data.cycleSummary)
	}
}

func TestAlignFooter(t *testing.T) {
	if got := AlignFooter("a", "b", 5); got != "a   b" {
		t.Fatalf("unexpected footer %q", got)
	}
	if got := AlignFooter("left", "right", 3); got != "left right" {
		t.Fatalf("expected single space fallback, got %q", got)
	}
}

func TestInteractiveImportDisablesPasswordPrompt(t *testing.T) {
	orig := source.NewResolver(source.SFTPOptions{PasswordPrompt: true})
	got := interactiveImport(importer.Options{Opener: orig})
	r, ok := got.Opener.(*source.Resolver)
	if !ok || r == orig {
		t.Fatalf("expected a copied resolver, got %T", got.Opener)
	}
	if _, err := r.SFTP.ReadPassword("pw: "); !errors.Is(err, source.ErrNoPrompt) {
		t.Fatalf("expected ErrNoPrompt, got %v", err)
	}
	if orig.SFTP.ReadPassword != nil {
		t.Fatal("the caller's resolver must keep its prompt")
	}
}
