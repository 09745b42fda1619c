package sim

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Line is a GPIO output wired to the simulated panel. Level changes are
// forwarded to the panel so it can frame transactions like the real chip.
type Line struct {
	gpiotest.Pin
	onChange func(gpio.Level)
}

func newLine(name string, level gpio.Level, onChange func(gpio.Level)) *Line {
	return &Line{
		Pin:      gpiotest.Pin{N: name, L: level},
		onChange: onChange,
	}
}

// Out sets the line level and notifies the panel.
func (l *Line) Out(level gpio.Level) error {
	if err := l.Pin.Out(level); err != nil {
		return err
	}
	if l.onChange != nil {
		l.onChange(level)
	}
	return nil
}
