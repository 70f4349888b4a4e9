package sh

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/softserial.go/pkg/bitbang"
	"github.com/robotalks/softserial.go/pkg/camd"
	"github.com/robotalks/softserial.go/pkg/camera"
	"github.com/robotalks/softserial.go/pkg/camera/proto"
	"github.com/robotalks/softserial.go/pkg/hw"
	"github.com/robotalks/softserial.go/pkg/hw/clk"
	"github.com/robotalks/softserial.go/pkg/hw/periphio"
)

// Shell provides ishell backed interactive shell over one camera.
type Shell struct {
	Interactive bool

	Shell *ishell.Shell

	cam   camera.Camera
	uart  *bitbang.UART
	model string
}

const (
	shellKey     = "$shell"
	closedPrompt = "[none] > "
)

var (
	// flags

	evalOnly bool

	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&ResetCmd,
		&VersionCmd,
		&SizeCmd,
		&SnapCmd,
		&ResumeCmd,
		&PicSizeCmd,
		&SaveCmd,
		&BaudCmd,
		&TraceCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom extracts Shell from command context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command funcs requiring an open camera.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).cam == nil {
			c.Err(fmt.Errorf("no camera open"))
			return
		}
		fn(c)
	}
}

// Open connects a camera driver over bit-banged UART on the given pins.
func (s *Shell) Open(model string, tx, rx hw.Pin, baud int) error {
	gpio, err := periphio.Open()
	if err != nil {
		return err
	}
	uart := bitbang.NewUART(clk.New(), gpio, tx, rx, baud)
	cam, err := camd.NewCamera(model, uart, baud)
	if err != nil {
		uart.Close()
		return err
	}
	s.Close()
	s.cam, s.uart, s.model = cam, uart, model
	s.Shell.SetPrompt(model + " > ")
	return nil
}

// Close releases the camera and its UART pins.
func (s *Shell) Close() {
	if s.uart != nil {
		s.uart.Close()
	}
	s.cam, s.uart = nil, nil
	s.Shell.SetPrompt(closedPrompt)
}

func (s *Shell) link() *proto.Link {
	type linked interface {
		Link() *proto.Link
	}
	return s.cam.(linked).Link()
}

// Run runs the shell, either interactively or evaluating args.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// OpenCmd opens a camera.
var OpenCmd = ishell.Cmd{
	Name: "open",
	Help: "MODEL TX-PIN RX-PIN [BAUD]",
	Func: func(c *ishell.Context) {
		if len(c.Args) < 3 {
			c.Err(fmt.Errorf("usage: open MODEL TX-PIN RX-PIN [BAUD]"))
			return
		}
		tx, err1 := strconv.Atoi(c.Args[1])
		rx, err2 := strconv.Atoi(c.Args[2])
		if err1 != nil || err2 != nil {
			c.Err(fmt.Errorf("pins must be numbers"))
			return
		}
		baud := 38400
		if len(c.Args) > 3 {
			var err error
			if baud, err = strconv.Atoi(c.Args[3]); err != nil {
				c.Err(err)
				return
			}
		}
		if err := ShellFrom(c).Open(c.Args[0], hw.Pin(tx), hw.Pin(rx), baud); err != nil {
			c.Err(err)
		}
	},
}

// CloseCmd closes the current camera.
var CloseCmd = ishell.Cmd{
	Name: "close",
	Func: func(c *ishell.Context) {
		ShellFrom(c).Close()
	},
}

// ResetCmd resets the camera.
var ResetCmd = ishell.Cmd{
	Name: "reset",
	Func: MustBeOpen(func(c *ishell.Context) {
		if err := ShellFrom(c).cam.Reset(); err != nil {
			c.Err(err)
			return
		}
		c.Println("OK")
	}),
}

// VersionCmd prints the firmware version, on cameras reporting one.
var VersionCmd = ishell.Cmd{
	Name: "version",
	Func: MustBeOpen(func(c *ishell.Context) {
		s := ShellFrom(c)
		v, ok := s.cam.(interface{ Version() (string, error) })
		if !ok {
			c.Err(fmt.Errorf("%s has no version command", s.model))
			return
		}
		ver, err := v.Version()
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(ver)
	}),
}

// SizeCmd selects the image size.
var SizeCmd = ishell.Cmd{
	Name: "size",
	Help: "WIDTH HEIGHT",
	Func: MustBeOpen(func(c *ishell.Context) {
		if len(c.Args) != 2 {
			c.Err(fmt.Errorf("usage: size WIDTH HEIGHT"))
			return
		}
		w, err1 := strconv.Atoi(c.Args[0])
		h, err2 := strconv.Atoi(c.Args[1])
		if err1 != nil || err2 != nil {
			c.Err(fmt.Errorf("sizes must be numbers"))
			return
		}
		if err := ShellFrom(c).cam.SetImageSize(w, h); err != nil {
			c.Err(err)
			return
		}
		c.Println("OK")
	}),
}

// SnapCmd freezes the current frame.
var SnapCmd = ishell.Cmd{
	Name: "snap",
	Func: MustBeOpen(func(c *ishell.Context) {
		if err := ShellFrom(c).cam.TakeSnapshot(); err != nil {
			c.Err(err)
			return
		}
		c.Println("OK")
	}),
}

// ResumeCmd resumes live frames after a snapshot.
var ResumeCmd = ishell.Cmd{
	Name: "resume",
	Func: MustBeOpen(func(c *ishell.Context) {
		s := ShellFrom(c)
		r, ok := s.cam.(interface{ Resume() error })
		if !ok {
			c.Err(fmt.Errorf("%s cannot resume", s.model))
			return
		}
		if err := r.Resume(); err != nil {
			c.Err(err)
			return
		}
		c.Println("OK")
	}),
}

// PicSizeCmd prints the frozen picture length.
var PicSizeCmd = ishell.Cmd{
	Name: "picsize",
	Func: MustBeOpen(func(c *ishell.Context) {
		n, err := ShellFrom(c).cam.PictureSize()
		if err != nil {
			c.Err(err)
			return
		}
		c.Printf("%d bytes\n", n)
	}),
}

// SaveCmd downloads the frozen picture into a file.
var SaveCmd = ishell.Cmd{
	Name: "save",
	Help: "FILE",
	Func: MustBeOpen(func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(fmt.Errorf("usage: save FILE"))
			return
		}
		pic, err := ShellFrom(c).cam.Picture()
		if err != nil {
			c.Err(err)
			return
		}
		if err := os.WriteFile(c.Args[0], pic, 0644); err != nil {
			c.Err(err)
			return
		}
		c.Printf("%d bytes -> %s\n", len(pic), c.Args[0])
	}),
}

// BaudCmd switches the camera baud rate, on cameras supporting it.
var BaudCmd = ishell.Cmd{
	Name: "baud",
	Help: "RATE",
	Func: MustBeOpen(func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Err(fmt.Errorf("usage: baud RATE"))
			return
		}
		rate, err := strconv.Atoi(c.Args[0])
		if err != nil {
			c.Err(err)
			return
		}
		s := ShellFrom(c)
		b, ok := s.cam.(interface{ SetBaudRate(int) error })
		if !ok {
			c.Err(fmt.Errorf("%s has no baud command", s.model))
			return
		}
		if err := b.SetBaudRate(rate); err != nil {
			c.Err(err)
			return
		}
		s.uart.SetBaud(rate)
		c.Println("OK")
	}),
}

// TraceCmd toggles command/reply byte tracing.
var TraceCmd = ishell.Cmd{
	Name: "trace",
	Help: "on|off",
	Func: MustBeOpen(func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) == 1 && c.Args[0] == "on" {
			s.link().Tracer = proto.TraceFunc(func(op string, data []byte) {
				s.Shell.Printf("%s % x\n", op, data)
			})
			return
		}
		s.link().Tracer = nil
	}),
}

// Main is the entry of shell program.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
