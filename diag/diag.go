// Package diag implements the -diagnose self test: RC522 presence, reset pin,
// buzzer and backend reachability. Meant to be run on the bench after wiring.
package diag

import (
	"context"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/punchclock/terminal/buzzer"
	"github.com/punchclock/terminal/config"
	"github.com/punchclock/terminal/provider"
	"github.com/punchclock/terminal/rfid"
)

// RC522 version register; reading it answers 0x91/0x92 on genuine chips
// and 0x88 on the common FM17522 clone.
const versionReg = 0x37

const scanWindow = 10 * time.Second

// Run executes the self test and returns a process exit code:
// 0 when the reader hardware answered, 1 otherwise.
func Run(cfg config.AppConfig, out io.Writer) int {
	fmt.Fprintln(out, "=== terminal diagnostic ===")

	ok := true

	if _, err := host.Init(); err != nil {
		fmt.Fprintf(out, "periph init failed: %v\n", err)
		return 1
	}

	if !probeChip(cfg, out) {
		ok = false
	}
	toggleReset(cfg, out)
	testBuzzer(cfg, out)
	if ok {
		scanForBadge(cfg, out)
	}
	checkBackend(cfg, out)

	if !ok {
		return 1
	}
	return 0
}

// probeChip reads the RC522 version register over raw SPI.
func probeChip(cfg config.AppConfig, out io.Writer) bool {
	fmt.Fprintf(out, "1. probing RC522 on %s...\n", cfg.SPIDevice)

	port, err := spireg.Open(cfg.SPIDevice)
	if err != nil {
		fmt.Fprintf(out, "   FAIL: open SPI: %v (is SPI enabled?)\n", err)
		return false
	}
	defer port.Close()

	conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		fmt.Fprintf(out, "   FAIL: connect: %v\n", err)
		return false
	}

	// Read: (register << 1) | 0x80, then one clocked-out byte.
	w := []byte{byte((versionReg<<1)&0x7E) | 0x80, 0x00}
	r := make([]byte, len(w))
	if err := conn.Tx(w, r); err != nil {
		fmt.Fprintf(out, "   FAIL: tx: %v\n", err)
		return false
	}

	switch version := r[1]; version {
	case 0x91, 0x92:
		fmt.Fprintf(out, "   OK: RC522 detected (version 0x%02X)\n", version)
		return true
	case 0x88:
		fmt.Fprintln(out, "   OK: FM17522 clone detected (version 0x88)")
		return true
	case 0x00, 0xFF:
		fmt.Fprintln(out, "   FAIL: no response, check MOSI/MISO/SCK/CS wiring")
		return false
	default:
		fmt.Fprintf(out, "   WARN: unknown chip version 0x%02X\n", version)
		return true
	}
}

func toggleReset(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "2. toggling reset pin %s...\n", cfg.PinReset)

	pin := gpioreg.ByName(cfg.PinReset)
	if pin == nil {
		fmt.Fprintf(out, "   FAIL: pin %s not found\n", cfg.PinReset)
		return
	}
	if err := pin.Out(gpio.Low); err != nil {
		fmt.Fprintf(out, "   FAIL: %v\n", err)
		return
	}
	time.Sleep(50 * time.Millisecond)
	if err := pin.Out(gpio.High); err != nil {
		fmt.Fprintf(out, "   FAIL: %v\n", err)
		return
	}
	fmt.Fprintln(out, "   OK")
}

func testBuzzer(cfg config.AppConfig, out io.Writer) {
	if !cfg.BuzzerEnabled {
		fmt.Fprintln(out, "3. buzzer disabled, skipped")
		return
	}
	fmt.Fprintf(out, "3. beeping buzzer on %s...\n", cfg.BuzzerPin)
	bz := buzzer.New(cfg.BuzzerPin, true)
	bz.Success()
	time.Sleep(500 * time.Millisecond)
	bz.Close()
	fmt.Fprintln(out, "   done (did you hear two beeps?)")
}

func scanForBadge(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "4. scanning for a badge (%s, hold a tag on the reader)...\n", scanWindow)

	reader, err := rfid.NewRC522(cfg.SPIDevice, cfg.PinReset, cfg.PinIRQ)
	if err != nil {
		fmt.Fprintf(out, "   FAIL: %v\n", err)
		return
	}
	defer reader.Close()

	deadline := time.Now().Add(scanWindow)
	for time.Now().Before(deadline) {
		uid, err := reader.ReadUID(time.Second)
		if err == nil && uid != "" {
			fmt.Fprintf(out, "   OK: badge UID %s\n", uid)
			return
		}
	}
	fmt.Fprintln(out, "   no badge detected")
}

func checkBackend(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "5. checking backend %s:%s...\n", cfg.BackendHost, cfg.BackendPort)

	dp := provider.NewClient(cfg.BackendHost, cfg.BackendPort, cfg.TerminalID, cfg.APIKey, cfg.RequestTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if dp.Health(ctx) {
		fmt.Fprintln(out, "   OK: backend is up")
	} else {
		fmt.Fprintln(out, "   FAIL: backend not reachable")
	}
}
