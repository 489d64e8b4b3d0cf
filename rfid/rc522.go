package rfid

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/mfrc522"
	"periph.io/x/host/v3"

	"github.com/punchclock/terminal/utils"
)

// RC522 drives an MFRC522 badge reader over SPI via periph.io.
type RC522 struct {
	port spi.PortCloser
	dev  *mfrc522.Dev
}

// NewRC522 opens the SPI port and initializes the reader. spiDev is a periph
// SPI port name like "SPI0.0"; rstPin and irqPin are GPIO names like "GPIO24".
func NewRC522(spiDev, rstPin, irqPin string) (*RC522, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", spiDev, err)
	}

	rst := gpioreg.ByName(rstPin)
	if rst == nil {
		_ = port.Close()
		return nil, fmt.Errorf("unknown reset pin %s", rstPin)
	}
	irq := gpioreg.ByName(irqPin)
	if irq == nil {
		_ = port.Close()
		return nil, fmt.Errorf("unknown irq pin %s", irqPin)
	}

	dev, err := mfrc522.NewSPI(port, rst, irq)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("init mfrc522: %w", err)
	}

	return &RC522{port: port, dev: dev}, nil
}

// ReadUID waits up to timeout for a badge and returns its UID as uppercase hex.
// A timeout without a badge is not an error.
func (r *RC522) ReadUID(timeout time.Duration) (string, error) {
	uid, err := r.dev.ReadUID(timeout)
	if err != nil {
		// The device reports a plain timeout when no tag is in the field.
		// Treat every read failure as "no badge"; the next poll retries.
		return "", nil
	}
	return FormatUID(uid), nil
}

// Close halts the reader and releases the SPI port.
func (r *RC522) Close() error {
	if err := r.dev.Halt(); err != nil {
		_ = r.port.Close()
		return err
	}
	return r.port.Close()
}

// Open tries to initialize the RC522 and falls back to the no-op developer
// reader when the hardware is unavailable, as a workstation without SPI would be.
func Open(spiDev, rstPin, irqPin string) Reader {
	r, err := NewRC522(spiDev, rstPin, irqPin)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("RFID reader unavailable (%v), running in developer mode", err)
		}
		return NewNoop()
	}
	if utils.Sugar != nil {
		utils.Sugar.Infof("RFID reader initialized on %s (rst=%s irq=%s)", spiDev, rstPin, irqPin)
	}
	return r
}
