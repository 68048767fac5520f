package ui

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockModel is a test UI model
type mockModel struct {
	panicOnInit   bool
	panicOnUpdate bool
	panicOnView   bool
	quitOnInit    bool
}

func (m *mockModel) Init() tea.Cmd {
	if m.panicOnInit {
		panic("init panic test")
	}
	if m.quitOnInit {
		return tea.Quit
	}
	return nil
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.panicOnUpdate {
		panic("update panic test")
	}
	return m, func() tea.Msg { return "updated" }
}

func (m *mockModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func headlessOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	}
}

func TestRecoveryHandler_NormalExit(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{quitOnInit: true}, headlessOptions()
	})

	require.NoError(t, handler.RunWithRecovery(context.Background()))
	assert.Equal(t, 0, handler.GetRestartCount())
}

func TestRecoveryHandler_RestartsAfterPanic(t *testing.T) {
	var runs int32
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		first := atomic.AddInt32(&runs, 1) == 1
		return &mockModel{panicOnInit: first, quitOnInit: !first}, headlessOptions()
	})
	handler.restartDelay = time.Millisecond

	require.NoError(t, handler.RunWithRecovery(context.Background()))
	assert.Equal(t, 1, handler.GetRestartCount())
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestRecoveryHandler_GivesUpAfterMaxRestarts(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnInit: true}, headlessOptions()
	})
	handler.restartDelay = time.Millisecond
	handler.maxRestarts = 2

	err := handler.RunWithRecovery(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many times")
	assert.Equal(t, 3, handler.GetRestartCount())
}

func TestRecoveryHandler_StopsOnContextCancel(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, headlessOptions()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- handler.RunWithRecovery(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		handler.Stop()
		t.Fatal("UI did not stop after context cancel")
	}
	assert.Equal(t, 0, handler.GetRestartCount())
}

func TestRecoveryHandler_StopQuitsRunningProgram(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, headlessOptions()
	})

	done := make(chan error, 1)
	go func() {
		done <- handler.RunWithRecovery(context.Background())
	}()

	require.Eventually(t, func() bool {
		handler.mu.Lock()
		defer handler.mu.Unlock()
		return handler.program != nil
	}, 2*time.Second, 10*time.Millisecond)
	handler.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("UI did not stop after Stop")
	}
	assert.Equal(t, 0, handler.GetRestartCount())
}

func TestSafeUIWrapper(t *testing.T) {
	logger := zap.NewNop()
	model := &mockModel{}
	wrapper := NewSafeUIWrapper(model, logger)

	assert.Nil(t, wrapper.Init())

	next, cmd := wrapper.Update(nil)
	assert.Same(t, wrapper, next)
	require.NotNil(t, cmd)
	assert.Equal(t, "updated", cmd())
	assert.Equal(t, "Test UI", wrapper.View())

	model.panicOnUpdate = true
	next, cmd = wrapper.Update(nil)
	assert.Same(t, wrapper, next)
	assert.Nil(t, cmd)

	model.panicOnView = true
	assert.Equal(t, "UI Error: View crashed. Press Ctrl+C to exit.", wrapper.View())
}
