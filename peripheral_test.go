package st7735

import (
	"errors"
	"testing"
	"time"
)

func TestSpinPoller(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		readyAt   int
		wantCalls int
		wantErr   error
	}{
		{"ready immediately", 10, 1, 1, nil},
		{"ready on last check", 10, 10, 10, nil},
		{"never ready", 10, 0, 10, ErrBusStall},
		{"default limit", 0, 3, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := SpinPoller{Limit: tt.limit}.Poll(func() bool {
				calls++
				return tt.readyAt > 0 && calls >= tt.readyAt
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Poll() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("ready called %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestTimeoutPoller(t *testing.T) {
	p := TimeoutPoller{Timeout: 5 * time.Millisecond, Interval: time.Millisecond}
	if err := p.Poll(func() bool { return false }); !errors.Is(err, ErrBusStall) {
		t.Errorf("Poll() error = %v, want ErrBusStall", err)
	}

	calls := 0
	err := p.Poll(func() bool {
		calls++
		return calls == 2
	})
	if err != nil {
		t.Errorf("Poll() error = %v", err)
	}
}

func TestStatusString(t *testing.T) {
	want := "Status{TXE:true RXNE:false BSY:true}"
	if got := (TxEmpty | Busy).String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
