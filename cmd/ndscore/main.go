// Command ndscore boots a ROM image and drives it in an SDL2 window: one
// 256x384 surface stacking the top and bottom screens the way the real
// console's dual panels sit, face/d-pad/shoulder buttons on the keyboard,
// and the mixer's resampled output queued straight to the default audio
// device.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/retrobus/ndscore/input"
	"github.com/retrobus/ndscore/logger"
	"github.com/retrobus/ndscore/system"
	"github.com/retrobus/ndscore/video2d"
	"github.com/veandco/go-sdl2/sdl"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	rom      string
	bios7    string
	bios9    string
	firmware string
	skipBIOS bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.rom, "rom", "", "path to the NDS ROM image")
	flag.StringVar(&f.bios7, "bios7", "", "path to the ARM7 BIOS image")
	flag.StringVar(&f.bios9, "bios9", "", "path to the ARM9 BIOS image")
	flag.StringVar(&f.firmware, "firmware", "", "path to the firmware image")
	flag.BoolVar(&f.skipBIOS, "skip-bios", false, "jump straight to the cartridge's entry points instead of executing the BIOS boot procedure")
	flag.Parse()
	return f
}

func run() error {
	f := parseFlags()
	if f.rom == "" || f.bios7 == "" || f.bios9 == "" {
		flag.Usage()
		return fmt.Errorf("-rom, -bios7 and -bios9 are required")
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	sys, err := system.New(cfg)
	if err != nil {
		return fmt.Errorf("constructing system: %w", err)
	}

	// the GUI framework needs the OS thread it was initialised on; running
	// the whole program from main() rather than spawning a goroutine keeps
	// that guarantee trivially true.
	return runWindow(sys)
}

func loadConfig(f flags) (system.Config, error) {
	rom, err := os.ReadFile(f.rom)
	if err != nil {
		return system.Config{}, fmt.Errorf("reading rom: %w", err)
	}
	bios7, err := os.ReadFile(f.bios7)
	if err != nil {
		return system.Config{}, fmt.Errorf("reading bios7: %w", err)
	}
	bios9, err := os.ReadFile(f.bios9)
	if err != nil {
		return system.Config{}, fmt.Errorf("reading bios9: %w", err)
	}
	var firmware []byte
	if f.firmware != "" {
		firmware, err = os.ReadFile(f.firmware)
		if err != nil {
			return system.Config{}, fmt.Errorf("reading firmware: %w", err)
		}
	}

	return system.Config{
		ROM:                rom,
		BIOS7:              bios7,
		BIOS9:              bios9,
		Firmware:           firmware,
		SkipBIOS:           f.skipBIOS,
		HostSampleRate:     audioFreq,
		AudioQueueCapacity: 1 << 14,
	}, nil
}

const (
	windowWidth  = video2d.ScreenWidth
	windowHeight = video2d.ScreenHeight * 2
	audioFreq    = 32768
)

func runWindow(sys *system.System) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("sdl.Init: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("ndscore", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		windowWidth*2, windowHeight*2, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("sdl.CreateWindow: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("sdl.CreateRenderer: %w", err)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, windowWidth, windowHeight)
	if err != nil {
		return fmt.Errorf("sdl.CreateTexture: %w", err)
	}
	defer texture.Destroy()

	audioSpec := &sdl.AudioSpec{Freq: audioFreq, Format: sdl.AUDIO_S16SYS, Channels: 2, Samples: 1024}
	audioDev, err := sdl.OpenAudioDevice("", false, audioSpec, nil, 0)
	if err != nil {
		return fmt.Errorf("sdl.OpenAudioDevice: %w", err)
	}
	defer sdl.CloseAudioDevice(audioDev)
	sdl.PauseAudioDevice(audioDev, false)

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	pixels := make([]byte, windowWidth*windowHeight*3)

	for {
		select {
		case <-intChan:
			return nil
		default:
		}

		quit := false
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				quit = true
			case *sdl.KeyboardEvent:
				applyKey(sys, ev)
			}
		}
		if quit {
			return nil
		}

		sys.Step()

		blitScreen(pixels, 0, frameEngineTop(sys))
		blitScreen(pixels, video2d.ScreenHeight, frameEngineBottom(sys))
		if err := texture.Update(nil, pixels, windowWidth*3); err != nil {
			return fmt.Errorf("texture.Update: %w", err)
		}
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		queueAudio(audioDev, sys)
	}
}

// FrameEngineTop/FrameEngineBottom aren't exposed directly by System (it
// only knows which raw engine is on top); resolve that here once per frame
// rather than teaching System about SDL's pixel layout.
func frameEngineTop(sys *system.System) [video2d.ScreenHeight][video2d.ScreenWidth]video2d.RGB24 {
	if sys.TopScreenIsEngineA() {
		return sys.FrameEngineA()
	}
	return sys.FrameEngineB()
}

func frameEngineBottom(sys *system.System) [video2d.ScreenHeight][video2d.ScreenWidth]video2d.RGB24 {
	if sys.TopScreenIsEngineA() {
		return sys.FrameEngineB()
	}
	return sys.FrameEngineA()
}

func blitScreen(pixels []byte, rowOffset int, frame [video2d.ScreenHeight][video2d.ScreenWidth]video2d.RGB24) {
	for y := 0; y < video2d.ScreenHeight; y++ {
		rowBase := (rowOffset + y) * windowWidth * 3
		for x := 0; x < video2d.ScreenWidth; x++ {
			px := frame[y][x]
			i := rowBase + x*3
			pixels[i] = px.R
			pixels[i+1] = px.G
			pixels[i+2] = px.B
		}
	}
}

func queueAudio(dev sdl.AudioDeviceID, sys *system.System) {
	frames, dropped := sys.DrainAudio()
	if dropped > 0 {
		logger.Logf("audio", "dropped %d frames on a full queue", dropped)
	}
	if len(frames) == 0 {
		return
	}
	buf := make([]int16, 0, len(frames)*2)
	for _, fr := range frames {
		buf = append(buf, fr.Left, fr.Right)
	}
	if err := sdl.QueueAudio(dev, int16SliceToBytes(buf)); err != nil {
		logger.Logf("audio", "QueueAudio: %v", err)
	}
}

func int16SliceToBytes(s []int16) []byte {
	b := make([]byte, len(s)*2)
	for i, v := range s {
		b[i*2] = byte(v)
		b[i*2+1] = byte(v >> 8)
	}
	return b
}

// keymap assigns a two-handed console-pad layout: arrow keys for the
// d-pad, Z/X for B/A, Return/RShift for Start/Select, A/S for L/R
// shoulder buttons.
var keymap = map[sdl.Keycode]uint16{
	sdl.K_UP:     input.KeyUp,
	sdl.K_DOWN:   input.KeyDown,
	sdl.K_LEFT:   input.KeyLeft,
	sdl.K_RIGHT:  input.KeyRight,
	sdl.K_z:      input.KeyB,
	sdl.K_x:      input.KeyA,
	sdl.K_RETURN: input.KeyStart,
	sdl.K_RSHIFT: input.KeySelect,
	sdl.K_a:      input.KeyL,
	sdl.K_s:      input.KeyR,
}

var heldKeys uint16

func applyKey(sys *system.System, ev *sdl.KeyboardEvent) {
	bit, ok := keymap[ev.Keysym.Sym]
	if !ok {
		return
	}
	if ev.State == sdl.PRESSED {
		heldKeys |= bit
	} else {
		heldKeys &^= bit
	}
	sys.SetKeyInput(heldKeys)
}
