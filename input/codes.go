package input

import "github.com/holoplot/go-evdev"

// Key codes used by the built-in policy and the killswitch. Any other code
// can be named through ParseKey.
const (
	KeyReserved Code = evdev.KEY_RESERVED
	KeyEsc      Code = evdev.KEY_ESC

	// Number row
	Key1 Code = evdev.KEY_1
	Key2 Code = evdev.KEY_2
	Key3 Code = evdev.KEY_3
	Key4 Code = evdev.KEY_4
	Key5 Code = evdev.KEY_5
	Key6 Code = evdev.KEY_6
	Key7 Code = evdev.KEY_7
	Key8 Code = evdev.KEY_8
	Key9 Code = evdev.KEY_9
	Key0 Code = evdev.KEY_0

	KeyMinus     Code = evdev.KEY_MINUS
	KeyEqual     Code = evdev.KEY_EQUAL
	KeyBackspace Code = evdev.KEY_BACKSPACE
	KeyTab       Code = evdev.KEY_TAB

	// Top letter row
	KeyQ Code = evdev.KEY_Q
	KeyW Code = evdev.KEY_W
	KeyE Code = evdev.KEY_E
	KeyR Code = evdev.KEY_R
	KeyT Code = evdev.KEY_T
	KeyY Code = evdev.KEY_Y
	KeyU Code = evdev.KEY_U
	KeyI Code = evdev.KEY_I
	KeyO Code = evdev.KEY_O
	KeyP Code = evdev.KEY_P

	KeyLeftBrace  Code = evdev.KEY_LEFTBRACE
	KeyRightBrace Code = evdev.KEY_RIGHTBRACE
	KeyEnter      Code = evdev.KEY_ENTER
	KeyLeftCtrl   Code = evdev.KEY_LEFTCTRL

	// Home row
	KeyA Code = evdev.KEY_A
	KeyS Code = evdev.KEY_S
	KeyD Code = evdev.KEY_D
	KeyF Code = evdev.KEY_F
	KeyG Code = evdev.KEY_G
	KeyH Code = evdev.KEY_H
	KeyJ Code = evdev.KEY_J
	KeyK Code = evdev.KEY_K
	KeyL Code = evdev.KEY_L

	KeySemicolon  Code = evdev.KEY_SEMICOLON
	KeyApostrophe Code = evdev.KEY_APOSTROPHE
	KeyGrave      Code = evdev.KEY_GRAVE
	KeyLeftShift  Code = evdev.KEY_LEFTSHIFT
	KeyBackslash  Code = evdev.KEY_BACKSLASH

	// Bottom row
	KeyZ Code = evdev.KEY_Z
	KeyX Code = evdev.KEY_X
	KeyC Code = evdev.KEY_C
	KeyV Code = evdev.KEY_V
	KeyB Code = evdev.KEY_B
	KeyN Code = evdev.KEY_N
	KeyM Code = evdev.KEY_M

	KeyComma      Code = evdev.KEY_COMMA
	KeyDot        Code = evdev.KEY_DOT
	KeySlash      Code = evdev.KEY_SLASH
	KeyRightShift Code = evdev.KEY_RIGHTSHIFT
	KeyKpAsterisk Code = evdev.KEY_KPASTERISK
	KeyLeftAlt    Code = evdev.KEY_LEFTALT
	KeySpace      Code = evdev.KEY_SPACE
	KeyCapsLock   Code = evdev.KEY_CAPSLOCK

	// Function keys
	KeyF1  Code = evdev.KEY_F1
	KeyF2  Code = evdev.KEY_F2
	KeyF3  Code = evdev.KEY_F3
	KeyF4  Code = evdev.KEY_F4
	KeyF5  Code = evdev.KEY_F5
	KeyF6  Code = evdev.KEY_F6
	KeyF7  Code = evdev.KEY_F7
	KeyF8  Code = evdev.KEY_F8
	KeyF9  Code = evdev.KEY_F9
	KeyF10 Code = evdev.KEY_F10

	KeyNumLock    Code = evdev.KEY_NUMLOCK
	KeyScrollLock Code = evdev.KEY_SCROLLLOCK

	// Keypad
	KeyKp7     Code = evdev.KEY_KP7
	KeyKp8     Code = evdev.KEY_KP8
	KeyKp9     Code = evdev.KEY_KP9
	KeyKpMinus Code = evdev.KEY_KPMINUS
	KeyKp4     Code = evdev.KEY_KP4
	KeyKp5     Code = evdev.KEY_KP5
	KeyKp6     Code = evdev.KEY_KP6
	KeyKpPlus  Code = evdev.KEY_KPPLUS
	KeyKp1     Code = evdev.KEY_KP1
	KeyKp2     Code = evdev.KEY_KP2
	KeyKp3     Code = evdev.KEY_KP3
	KeyKp0     Code = evdev.KEY_KP0
	KeyKpDot   Code = evdev.KEY_KPDOT

	Key102nd Code = evdev.KEY_102ND // ISO key between left shift and Z
	KeyF11   Code = evdev.KEY_F11
	KeyF12   Code = evdev.KEY_F12

	KeyKpEnter   Code = evdev.KEY_KPENTER
	KeyRightCtrl Code = evdev.KEY_RIGHTCTRL
	KeyKpSlash   Code = evdev.KEY_KPSLASH
	KeySysRq     Code = evdev.KEY_SYSRQ
	KeyRightAlt  Code = evdev.KEY_RIGHTALT

	// Navigation
	KeyHome     Code = evdev.KEY_HOME
	KeyUp       Code = evdev.KEY_UP
	KeyPageUp   Code = evdev.KEY_PAGEUP
	KeyLeft     Code = evdev.KEY_LEFT
	KeyRight    Code = evdev.KEY_RIGHT
	KeyEnd      Code = evdev.KEY_END
	KeyDown     Code = evdev.KEY_DOWN
	KeyPageDown Code = evdev.KEY_PAGEDOWN
	KeyInsert   Code = evdev.KEY_INSERT
	KeyDelete   Code = evdev.KEY_DELETE

	// Media
	KeyMute       Code = evdev.KEY_MUTE
	KeyVolumeDown Code = evdev.KEY_VOLUMEDOWN
	KeyVolumeUp   Code = evdev.KEY_VOLUMEUP
	KeyPower      Code = evdev.KEY_POWER
	KeyKpEqual    Code = evdev.KEY_KPEQUAL
	KeyPause      Code = evdev.KEY_PAUSE
	KeyKpComma    Code = evdev.KEY_KPCOMMA

	KeyLeftMeta  Code = evdev.KEY_LEFTMETA // Windows/Super key
	KeyRightMeta Code = evdev.KEY_RIGHTMETA
	KeyCompose   Code = evdev.KEY_COMPOSE

	KeyNextSong     Code = evdev.KEY_NEXTSONG
	KeyPlayPause    Code = evdev.KEY_PLAYPAUSE
	KeyPreviousSong Code = evdev.KEY_PREVIOUSSONG
	KeyStopCD       Code = evdev.KEY_STOPCD

	KeyF13 Code = evdev.KEY_F13
	KeyF14 Code = evdev.KEY_F14
	KeyF15 Code = evdev.KEY_F15
	KeyF16 Code = evdev.KEY_F16
	KeyF17 Code = evdev.KEY_F17
	KeyF18 Code = evdev.KEY_F18
	KeyF19 Code = evdev.KEY_F19
	KeyF20 Code = evdev.KEY_F20
	KeyF21 Code = evdev.KEY_F21
	KeyF22 Code = evdev.KEY_F22
	KeyF23 Code = evdev.KEY_F23
	KeyF24 Code = evdev.KEY_F24

	// KeyMax is the highest key code the kernel defines.
	KeyMax Code = evdev.KEY_MAX
)
