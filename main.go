// main.go - entry point: wires the 68K/Z80/VDP address map, loads a
// cartridge, and drives the frame scheduler.

package main

import (
	"fmt"
	"os"
)

const Version = "0.1.0"

// Genesis is the assembled console: the two CPU cores, the VDP, the 68K
// bus they share, and the scheduler that interleaves them.
type Genesis struct {
	bus *Bus

	m68k *M68KCPU
	z80  *Z80Coprocessor
	vdp  *VDP

	cart   *cartridgeDevice
	header *CartridgeHeader

	sched *Scheduler

	video   VideoOutput
	rgbaBuf []byte
}

// 68K address map, per spec.md's memory map table.
const (
	cartROMStart  = 0x000000
	cartROMEnd    = 0x3FFFFF
	z80SoundStart = 0xA00000
	z80SoundEnd   = 0xA01FFF
	fmPortStart   = 0xA04000
	fmPortEnd     = 0xA04003
	versionPort   = 0xA10000
	ctrlPort1     = 0xA10002
	ctrlPort2     = 0xA10008
	ctrlPortExt   = 0xA1000E
	z80CtrlStart  = 0xA11100
	z80CtrlEnd    = 0xA11201
	extPortStart  = 0xA13000
	extPortEnd    = 0xA130FF
	vdpPortStart  = 0xC00000
	vdpPortEnd    = 0xC0001F
	workRAMStart  = 0xE00000
	workRAMEnd    = 0xFFFFFF

	z80SoundRAMSize = 0x2000
	workRAMSize     = 0x10000
)

// NewGenesis constructs the bus, every wired device, both CPU cores, the
// VDP, and the scheduler, then loads romPath as the cartridge. pad may be
// nil (headless runs), in which case controller port 1 reports no input.
func NewGenesis(romPath string, pal bool, pad controllerSource) (*Genesis, error) {
	cart, header, err := LoadCartridge(romPath)
	if err != nil {
		return nil, err
	}

	bus := newBus("68k", 0x1000000)
	m68k := NewM68KCPU(bus)

	soundRAM := newRAMDevice(z80SoundRAMSize)
	bank := &z80BankRegisterDevice{}
	z80ROM := &z80BankedROMDevice{rom: cart.rom, bank: bank}
	fm := &fmPortDevice{}

	z80 := NewZ80Coprocessor(soundRAM, bank, z80ROM, fm)
	z80ctrl := newZ80ControlDevice(z80)

	vdp := NewVDP(bus, m68k, z80, pal)

	workRAM := newRAMDevice(workRAMSize)
	versionDev := newVersionPortDevice(pal, false)
	ctrl1 := newControllerPortDevice(pad)
	ctrl2 := newControllerPortDevice(nil)
	extPort := extensionPortDevice{}

	g := &Genesis{
		bus: bus, m68k: m68k, z80: z80, vdp: vdp,
		cart: cart, header: header,
	}

	bus.wireRange(cartROMStart, cartROMEnd, 0, cart)
	for base := uint32(z80SoundStart); base <= z80SoundEnd; base += z80SoundRAMSize {
		bus.wireRange(base, base+z80SoundRAMSize-1, 0, soundRAM)
	}
	bus.wireRange(fmPortStart, fmPortEnd, 0, fm)
	bus.wireRange(versionPort, versionPort+1, 0, versionDev)
	bus.wireRange(ctrlPort1, ctrlPort1+5, 0, ctrl1)
	bus.wireRange(ctrlPort2, ctrlPort2+5, 0, ctrl2)
	bus.wireRange(ctrlPortExt, ctrlPortExt+5, 0, extensionPortDevice{})
	bus.wireRange(z80CtrlStart, z80CtrlEnd, 0, z80ctrl)
	bus.wireRange(extPortStart, extPortEnd, 0, extPort)

	bus.wireRange(vdpPortStart, vdpPortStart+1, 0, vdpDataPortDevice{vdp})
	bus.wireRange(vdpPortStart+2, vdpPortStart+3, 0, vdpControlPortDevice{vdp})
	bus.wireRange(vdpPortStart+4, vdpPortStart+5, 0, vdpHVCounterDevice{vdp})

	for base := uint32(workRAMStart); base <= workRAMEnd; base += workRAMSize {
		bus.wireRange(base, base+workRAMSize-1, 0, workRAM)
	}

	g.sched = NewScheduler(vdp, m68k, z80, pal)
	return g, nil
}

// RunFrame advances every component by one frame's master-clock budget.
func (g *Genesis) RunFrame() {
	g.sched.RunFrame()
}

// FrameRGBA converts the VDP's composed frame into the packed RGBA bytes
// a VideoOutput backend expects.
func (g *Genesis) FrameRGBA() []byte {
	if len(g.rgbaBuf) != len(g.vdp.frame)*4 {
		g.rgbaBuf = make([]byte, len(g.vdp.frame)*4)
	}
	for i, px := range g.vdp.frame {
		o := i * 4
		g.rgbaBuf[o] = px.r
		g.rgbaBuf[o+1] = px.g
		g.rgbaBuf[o+2] = px.b
		g.rgbaBuf[o+3] = 0xFF
	}
	return g.rgbaBuf
}

func main() {
	headless := false
	pal := false
	var romPath string

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-headless":
			headless = true
		case "-pal":
			pal = true
		case "-version":
			printFeatures()
			return
		default:
			romPath = arg
		}
	}

	if romPath == "" {
		fmt.Println("usage: genesis [-headless] [-pal] <rom-file>")
		os.Exit(1)
	}

	if headless {
		g, err := NewGenesis(romPath, pal, nil)
		if err != nil {
			fmt.Printf("failed to load cartridge: %v\n", err)
			os.Exit(1)
		}
		g.m68k.Reset()
		fmt.Printf("loaded %q: %s / %s\n", romPath, g.header.DomesticName, g.header.OverseasName)
		for {
			g.RunFrame()
		}
	}

	video, err := NewVideoOutput(VIDEO_BACKEND_EBITEN)
	if err != nil {
		fmt.Printf("failed to initialise video: %v\n", err)
		os.Exit(1)
	}

	var pad controllerSource
	if c, ok := video.(interface{ Controller() controllerSource }); ok {
		pad = c.Controller()
	}

	g, err := NewGenesis(romPath, pal, pad)
	if err != nil {
		fmt.Printf("failed to load cartridge: %v\n", err)
		os.Exit(1)
	}
	g.m68k.Reset()
	g.video = video

	fmt.Printf("loaded %q: %s / %s\n", romPath, g.header.DomesticName, g.header.OverseasName)

	if err := video.SetDisplayConfig(DisplayConfig{
		Width:       activeWidth,
		Height:      240,
		Scale:       2,
		RefreshRate: 60,
		PixelFormat: PixelFormatRGBA,
	}); err != nil {
		fmt.Printf("failed to configure video: %v\n", err)
		os.Exit(1)
	}
	if err := video.Start(); err != nil {
		fmt.Printf("failed to start video: %v\n", err)
		os.Exit(1)
	}
	defer video.Close()

	audio, err := NewOtoPlayer(44100)
	if err == nil {
		audio.SetupPlayer(g.z80.sbus.fm.(*fmPortDevice))
		audio.Start()
		defer audio.Close()
	}

	for {
		g.RunFrame()
		if err := video.UpdateFrame(g.FrameRGBA()); err != nil {
			break
		}
		if err := video.WaitForVSync(); err != nil {
			break
		}
	}
}
