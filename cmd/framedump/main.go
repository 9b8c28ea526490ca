//go:build !tinygo

// framedump prints the registers held in a Cortex-M exception frame.
//
// Input is the 32-byte hardware frame as found at a process's SP, optionally
// followed by the 32-byte r4-r11 block. Hex dumps (xxd -p, "% x", 0x-prefixed
// bytes) and raw binary are both accepted.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"kestrel/hal"
	"kestrel/kernel"
)

type dump struct {
	frame   kernel.Frame
	regs    kernel.Regs
	hasRegs bool
}

func main() {
	var inPath string
	var raw bool
	flag.StringVar(&inPath, "in", "", "Dump file (default stdin).")
	flag.BoolVar(&raw, "bin", false, "Input is raw bytes, not a hex dump.")
	flag.Parse()

	var in io.Reader = os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := run(in, os.Stdout, raw); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, raw bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	if !raw {
		data, err = parseHex(string(data))
		if err != nil {
			return err
		}
	}
	d, err := decode(data)
	if err != nil {
		return err
	}
	return d.print(out)
}

// parseHex accepts groups of hex digits split by spaces, commas or colons.
// A "0x" prefix on a group is ignored.
func parseHex(s string) ([]byte, error) {
	var b strings.Builder
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ':'
	}) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		b.WriteString(field)
	}
	out, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("parse hex dump: %w", err)
	}
	return out, nil
}

func decode(data []byte) (dump, error) {
	var d dump
	if len(data) < kernel.FrameBytes {
		return d, fmt.Errorf("dump is %d bytes, need at least %d", len(data), kernel.FrameBytes)
	}
	if err := d.frame.UnmarshalBinary(data[:kernel.FrameBytes]); err != nil {
		return d, err
	}
	rest := data[kernel.FrameBytes:]
	switch {
	case len(rest) == 0:
	case len(rest) >= len(d.regs)*4:
		for i := range d.regs {
			d.regs[i] = binary.LittleEndian.Uint32(rest[i*4:])
		}
		d.hasRegs = true
	default:
		return d, errors.New("trailing bytes do not form an r4-r11 block")
	}
	return d, nil
}

func (d dump) print(w io.Writer) error {
	f := d.frame
	rows := []struct {
		name string
		v    uint32
	}{
		{"r0", f.R0}, {"r1", f.R1}, {"r2", f.R2}, {"r3", f.R3},
		{"r12", f.R12}, {"lr", f.LR}, {"pc", f.PC}, {"xpsr", f.XPSR},
	}
	if d.hasRegs {
		for i, v := range d.regs {
			rows = append(rows, struct {
				name string
				v    uint32
			}{fmt.Sprintf("r%d", i+4), v})
		}
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-5s %#08x\n", r.name, r.v); err != nil {
			return err
		}
	}

	var notes []string
	if f.XPSR&kernel.XPSRThumb == 0 {
		notes = append(notes, "xpsr: thumb bit clear, exception return will fault")
	}
	if exc := f.XPSR & 0x1ff; exc != 0 {
		notes = append(notes, fmt.Sprintf("xpsr: exception %d active", exc))
	}
	sc := kernel.DecodeSyscall(f)
	switch sc.ID {
	case kernel.SysWrite:
		notes = append(notes, fmt.Sprintf("syscall: write(ptr=%#08x, len=%d)", sc.Args[0], int32(sc.Args[1])))
	case kernel.SysWaitIRQ:
		notes = append(notes, fmt.Sprintf("syscall: wait_irq(%s)", hal.IRQ(sc.Args[0])))
	default:
		notes = append(notes, fmt.Sprintf("syscall: none (r0=%d)", f.R0))
	}
	for _, n := range notes {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}
