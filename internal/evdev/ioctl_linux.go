//go:build linux

// Package evdev is the Linux device layer: keyboards are read from
// /dev/input/event* nodes and mirrored to virtual devices created through
// /dev/uinput.
//
// Event nodes are read through raw descriptors so they can share one poll
// with the wakeup pipes; go-evdev puts descriptors back into blocking mode
// on every ioctl. Virtual devices are created with go-evdev.
package evdev

import (
	"encoding/binary"
	"unsafe"

	goevdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/Alia5/capsule/input"
)

// asm-generic/ioctl.h
const (
	iocWrite = 1
	iocRead  = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uint {
	return uint(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift)
}

// linux/input.h
func eviocgbit(ev input.Type, size int) uint {
	return ioc(iocRead, 'E', 0x20+uintptr(ev), uintptr(size))
}

func eviocgkey(size int) uint  { return ioc(iocRead, 'E', 0x18, uintptr(size)) }
func eviocgname(size int) uint { return ioc(iocRead, 'E', 0x06, uintptr(size)) }

var (
	eviocgid  = ioc(iocRead, 'E', 0x02, unsafe.Sizeof(goevdev.InputID{}))
	eviocgrab = ioc(iocWrite, 'E', 0x90, unsafe.Sizeof(int32(0)))
)

// ioctlBuf issues an ioctl whose argument is a buffer the kernel fills or
// reads.
func ioctlBuf(fd int, req uint, buf unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(buf))
	if errno != 0 {
		return errno
	}
	return nil
}

// struct input_event is a struct timeval followed by type, code and value.
var (
	timevalSize = int(unsafe.Sizeof(unix.Timeval{}))
	eventSize   = timevalSize + 8
)

func decodeEvent(b []byte) input.Event {
	b = b[timevalSize:]
	return input.Event{
		Type:  input.Type(binary.NativeEndian.Uint16(b[0:2])),
		Code:  input.Code(binary.NativeEndian.Uint16(b[2:4])),
		Value: int32(binary.NativeEndian.Uint32(b[4:8])),
	}
}

func testBit(bits []byte, n int) bool {
	if n/8 >= len(bits) {
		return false
	}
	return bits[n/8]&(1<<(n%8)) != 0
}

func setBits(bits []byte) []input.Code {
	var codes []input.Code
	for n := 0; n < len(bits)*8; n++ {
		if testBit(bits, n) {
			codes = append(codes, input.Code(n))
		}
	}
	return codes
}
