package irexec

import (
	"io"
	"strconv"
	"strings"

	"github.com/llir/llvm/ir"
)

func (vm *VM) callBuiltin(f *ir.Func, args []Value) (Value, error) {
	switch f.Name() {
	case "printf":
		if len(args) == 0 {
			return Value{}, vm.fail(PanicUnimplemented, "printf without format")
		}
		format, err := vm.cString(args[0])
		if err != nil {
			return Value{}, err
		}
		s, err := vm.sprintf(format, args[1:])
		if err != nil {
			return Value{}, err
		}
		n, err := io.WriteString(vm.Out, s)
		if err != nil {
			return Value{}, err
		}
		return IntValue(int64(n)), nil
	}
	return Value{}, vm.fail(PanicNoFunction, "external @%s", f.Name())
}

// cString reads a NUL-terminated byte string starting at p.
func (vm *VM) cString(p Value) (string, error) {
	if p.K != KindPtr || p.P.Obj == nil {
		return "", vm.fail(PanicNullDeref, "string at %s", p)
	}
	var sb strings.Builder
	cells := p.P.Obj.Cells
	for i := p.P.Off; ; i++ {
		if i < 0 || i >= len(cells) {
			return "", vm.fail(PanicOutOfBounds, "unterminated string at %s", p)
		}
		b := byte(cells[i].I)
		if b == 0 {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// sprintf supports the conversions the code generator emits plus a few
// neighbours: %d %ld %lld %i %u %f %lf %g %s %c %x %%.
func (vm *VM) sprintf(format string, args []Value) (string, error) {
	var sb strings.Builder
	next := 0
	arg := func() (Value, error) {
		if next >= len(args) {
			return Value{}, vm.fail(PanicOutOfBounds, "printf %q: missing argument %d", format, next+1)
		}
		v := args[next]
		next++
		return v, nil
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("lhzjt", format[j]) >= 0 {
			j++
		}
		if j >= len(format) {
			sb.WriteString(format[i:])
			break
		}
		conv := format[j]
		i = j
		if conv == '%' {
			sb.WriteByte('%')
			continue
		}
		v, err := arg()
		if err != nil {
			return "", err
		}
		switch conv {
		case 'd', 'i':
			sb.WriteString(strconv.FormatInt(v.I, 10))
		case 'u':
			sb.WriteString(strconv.FormatUint(uint64(v.I), 10))
		case 'x':
			sb.WriteString(strconv.FormatUint(uint64(v.I), 16))
		case 'f':
			sb.WriteString(strconv.FormatFloat(v.F, 'f', 6, 64))
		case 'g':
			sb.WriteString(strconv.FormatFloat(v.F, 'g', -1, 64))
		case 'c':
			sb.WriteByte(byte(v.I))
		case 's':
			s, err := vm.cString(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		default:
			return "", vm.fail(PanicUnimplemented, "printf conversion %%%c", conv)
		}
	}
	return sb.String(), nil
}
