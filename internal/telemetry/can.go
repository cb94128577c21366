package telemetry

import (
	"context"
	"fmt"
	"math"
	"net"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/track"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// CommandFrameBaseID is the id of car 0's command frame; car n uses
// CommandFrameBaseID+n.
const CommandFrameBaseID = 0x300

// Command frame layout, little endian:
//
//	bits  0-15  steer command x1000, signed
//	bits 16-31  speed command x10, signed
//	bit  32     race completed
//	bits 40-55  car speed x10, signed
const (
	steerFactor = 1000
	speedFactor = 10
)

// Command is a decoded command frame.
type Command struct {
	Car      int
	Steer    float64
	Speed    float64
	Done     bool
	CarSpeed float64
}

// FrameWriter sends CAN frames.
type FrameWriter interface {
	TransmitFrame(ctx context.Context, f can.Frame) error
}

// EncodeCommand packs one report into a CAN frame. Values outside the
// 16-bit signal range saturate.
func EncodeCommand(carIndex int, steer, speed, carSpeed float64, done bool) can.Frame {
	var data can.Data
	data.SetSignedBitsLittleEndian(0, 16, scaled(steer, steerFactor))
	data.SetSignedBitsLittleEndian(16, 16, scaled(speed, speedFactor))
	data.SetBit(32, done)
	data.SetSignedBitsLittleEndian(40, 16, scaled(carSpeed, speedFactor))
	return can.Frame{
		ID:     CommandFrameBaseID + uint32(carIndex),
		Length: 7,
		Data:   data,
	}
}

func DecodeCommand(f can.Frame) (Command, error) {
	if f.ID < CommandFrameBaseID || f.ID > CommandFrameBaseID+0xff {
		return Command{}, fmt.Errorf("telemetry: frame 0x%X is not a command frame", f.ID)
	}
	if f.Length < 7 {
		return Command{}, fmt.Errorf("telemetry: command frame 0x%X has length %d", f.ID, f.Length)
	}
	return Command{
		Car:      int(f.ID - CommandFrameBaseID),
		Steer:    float64(f.Data.SignedBitsLittleEndian(0, 16)) / steerFactor,
		Speed:    float64(f.Data.SignedBitsLittleEndian(16, 16)) / speedFactor,
		Done:     f.Data.Bit(32),
		CarSpeed: float64(f.Data.SignedBitsLittleEndian(40, 16)) / speedFactor,
	}, nil
}

func scaled(v, factor float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	return int64(math.Max(math.MinInt16, math.Min(math.Round(v*factor), math.MaxInt16)))
}

// CANListener publishes every report of one car as a command frame.
type CANListener struct {
	ctx context.Context
	w   FrameWriter
	car int
}

func NewCANListener(ctx context.Context, w FrameWriter, carIndex int) *CANListener {
	return &CANListener{ctx: ctx, w: w, car: carIndex}
}

func (l *CANListener) Report(c car.Car, layout track.Layout, steer, speed float64, done bool) error {
	f := EncodeCommand(l.car, steer, speed, c.Speed(), done)
	if err := l.w.TransmitFrame(l.ctx, f); err != nil {
		return fmt.Errorf("can transmit 0x%X: %w", f.ID, err)
	}
	return nil
}

// SocketCANWriter transmits frames on a SocketCAN interface.
type SocketCANWriter struct {
	conn net.Conn
	tx   *socketcan.Transmitter
}

func DialSocketCAN(ctx context.Context, iface string) (*SocketCANWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCANWriter{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
	}, nil
}

func (w *SocketCANWriter) TransmitFrame(ctx context.Context, f can.Frame) error {
	return w.tx.TransmitFrame(ctx, f)
}

func (w *SocketCANWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}
