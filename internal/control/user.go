package control

import (
	"sync"

	"github.com/san-kum/racepilot/internal/car"
)

type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
)

// InputSource reports which keys a player holds.
type InputSource interface {
	Pressed(player int, k Key) bool
}

// KeyState is an InputSource fed by whatever reads the keyboard. It may
// be written from another goroutine than the one running Update.
type KeyState struct {
	mu      sync.RWMutex
	pressed map[int]map[Key]bool
}

func NewKeyState() *KeyState {
	return &KeyState{pressed: make(map[int]map[Key]bool)}
}

func (k *KeyState) Set(player int, key Key, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pressed[player] == nil {
		k.pressed[player] = make(map[Key]bool)
	}
	k.pressed[player][key] = down
}

func (k *KeyState) Pressed(player int, key Key) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pressed[player][key]
}

// User maps a player's keys onto the car actuators.
type User struct {
	Base
	input  InputSource
	player int
}

func NewUser(c car.Car, input InputSource, player int) *User {
	return &User{Base: NewBase(c), input: input, player: player}
}

func (u *User) Update(done bool) error {
	u.car.ClearStatuses()

	switch {
	case u.input.Pressed(u.player, KeyDown):
		if !done {
			u.car.ApplyBrake()
		}
	case u.input.Pressed(u.player, KeyUp):
		if !done {
			u.car.ApplyAccelerate()
		}
	}

	switch {
	case u.input.Pressed(u.player, KeyLeft):
		u.car.ApplySteer(-1)
	case u.input.Pressed(u.player, KeyRight):
		u.car.ApplySteer(1)
	default:
		u.car.ApplySteer(0)
	}
	return nil
}
