package bytecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Decoding errors.
var (
	ErrInvalidMagic    = errors.New("invalid magic number: expected IONBC")
	ErrVersionMismatch = errors.New("bytecode stream version mismatch")
	ErrUnexpectedEOF   = errors.New("unexpected end of bytecode data")
)

// Reader decodes the IonVM wire format produced by Writer.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) readU8() (uint8, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) readU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) readI32() (int32, error) {
	v, err := r.readU32()
	return int32(v), err
}

func (r *Reader) readF64() (float64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) readString() (string, error) {
	n, err := r.readU32()
	if err != nil {
		return "", err
	}
	if r.pos+int(n) > len(r.data) {
		return "", ErrUnexpectedEOF
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *Reader) readBool() (bool, error) {
	b, err := r.readU8()
	return b != 0, err
}

// ReadValue decodes one constant value.
func (r *Reader) ReadValue() (Value, error) {
	tag, err := r.readU8()
	if err != nil {
		return Value{}, err
	}
	kind := ValueKind(tag)
	switch kind {
	case KindNumber:
		n, err := r.readF64()
		return Number(n), err
	case KindBoolean:
		b, err := r.readBool()
		return Boolean(b), err
	case KindAtom, KindString, KindFunction:
		s, err := r.readString()
		return Value{Kind: kind, Str: s}, err
	case KindComplex:
		re, err := r.readF64()
		if err != nil {
			return Value{}, err
		}
		im, err := r.readF64()
		return Complex(complex(re, im)), err
	case KindUnit:
		return Unit(), nil
	case KindUndefined:
		return Undefined(), nil
	case KindArray, KindTuple:
		n, err := r.readU32()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			item, err := r.ReadValue()
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{Kind: kind, Items: items}, nil
	case KindObject:
		n, err := r.readU32()
		if err != nil {
			return Value{}, err
		}
		props := make([]Property, 0, n)
		for i := uint32(0); i < n; i++ {
			var p Property
			if p.Key, err = r.readString(); err != nil {
				return Value{}, err
			}
			if p.Value, err = r.ReadValue(); err != nil {
				return Value{}, err
			}
			if p.Writable, err = r.readBool(); err != nil {
				return Value{}, err
			}
			if p.Enumerable, err = r.readBool(); err != nil {
				return Value{}, err
			}
			if p.Configurable, err = r.readBool(); err != nil {
				return Value{}, err
			}
			props = append(props, p)
		}
		return Object(props...), nil
	default:
		return Value{}, fmt.Errorf("%w: 0x%02X", ErrUnknownKind, tag)
	}
}

// ReadPattern decodes one match pattern.
func (r *Reader) ReadPattern() (Pattern, error) {
	tag, err := r.readU8()
	if err != nil {
		return Pattern{}, err
	}
	kind := PatternKind(tag)
	switch kind {
	case PatternValue:
		v, err := r.ReadValue()
		return ValuePattern(v), err
	case PatternWildcard:
		return WildcardPattern(), nil
	case PatternTuple, PatternArray:
		n, err := r.readU32()
		if err != nil {
			return Pattern{}, err
		}
		subs := make([]Pattern, 0, n)
		for i := uint32(0); i < n; i++ {
			sub, err := r.ReadPattern()
			if err != nil {
				return Pattern{}, err
			}
			subs = append(subs, sub)
		}
		return Pattern{Kind: kind, Subs: subs}, nil
	case PatternTaggedEnum:
		tag, err := r.readString()
		if err != nil {
			return Pattern{}, err
		}
		inner, err := r.ReadPattern()
		if err != nil {
			return Pattern{}, err
		}
		return TaggedEnumPattern(tag, inner), nil
	default:
		return Pattern{}, fmt.Errorf("%w: 0x%02X", ErrUnknownPattern, tag)
	}
}

// ReadInstruction decodes one instruction.
func (r *Reader) ReadInstruction() (Instruction, error) {
	tag, err := r.readU8()
	if err != nil {
		return Instruction{}, err
	}
	op := Opcode(tag)

	readReg := func() (int, error) {
		v, err := r.readU32()
		return int(v), err
	}

	switch op {
	case OpLoadConst:
		dst, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		v, err := r.ReadValue()
		if err != nil {
			return Instruction{}, err
		}
		return LoadConst(dst, v), nil

	case OpMove, OpSend, OpNot:
		a, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		b, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, A: a, B: b}, nil

	case OpAdd, OpSub, OpMul, OpDiv,
		OpGetProp, OpSetProp,
		OpEqual, OpNotEqual, OpLessThan, OpLessEqual, OpGreaterThan, OpGreaterEqual,
		OpAnd, OpOr, OpReceiveWithTimeout:
		a, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		b, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		c, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, A: a, B: b, C: c}, nil

	case OpCall, OpSpawn:
		dst, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		fn, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		argc, err := r.readU32()
		if err != nil {
			return Instruction{}, err
		}
		args := make([]int, 0, argc)
		for i := uint32(0); i < argc; i++ {
			a, err := readReg()
			if err != nil {
				return Instruction{}, err
			}
			args = append(args, a)
		}
		return Instruction{Op: op, A: dst, B: fn, Args: args}, nil

	case OpReturn, OpReceive, OpLink:
		a, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, A: a}, nil

	case OpJump:
		off, err := r.readI32()
		if err != nil {
			return Instruction{}, err
		}
		return Jump(int(off)), nil

	case OpJumpIfTrue, OpJumpIfFalse:
		cond, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		off, err := r.readI32()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, A: cond, Offset: int(off)}, nil

	case OpMatch:
		reg, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		n, err := r.readU32()
		if err != nil {
			return Instruction{}, err
		}
		arms := make([]MatchArm, 0, n)
		for i := uint32(0); i < n; i++ {
			pat, err := r.ReadPattern()
			if err != nil {
				return Instruction{}, err
			}
			off, err := r.readI32()
			if err != nil {
				return Instruction{}, err
			}
			arms = append(arms, MatchArm{Pattern: pat, Offset: int(off)})
		}
		return Match(reg, arms...), nil

	case OpYield, OpNop:
		return Instruction{Op: op}, nil

	case OpObjectInit:
		dst, err := readReg()
		if err != nil {
			return Instruction{}, err
		}
		n, err := r.readU32()
		if err != nil {
			return Instruction{}, err
		}
		fields := make([]ObjectField, 0, n)
		for i := uint32(0); i < n; i++ {
			var f ObjectField
			if f.Key, err = r.readString(); err != nil {
				return Instruction{}, err
			}
			src, err := r.readU8()
			if err != nil {
				return Instruction{}, err
			}
			switch src {
			case objectFieldRegister:
				f.FromRegister = true
				if f.Register, err = readReg(); err != nil {
					return Instruction{}, err
				}
			case objectFieldValue:
				if f.Value, err = r.ReadValue(); err != nil {
					return Instruction{}, err
				}
			default:
				return Instruction{}, fmt.Errorf("%w: object field source 0x%02X", ErrEncoding, src)
			}
			if f.Writable, err = r.readBool(); err != nil {
				return Instruction{}, err
			}
			if f.Enumerable, err = r.readBool(); err != nil {
				return Instruction{}, err
			}
			if f.Configurable, err = r.readBool(); err != nil {
				return Instruction{}, err
			}
			fields = append(fields, f)
		}
		return Instruction{Op: op, A: dst, Fields: fields}, nil

	default:
		return Instruction{}, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, tag)
	}
}

// ReadFunction decodes a single function container.
func (r *Reader) ReadFunction() (*Function, error) {
	hasName, err := r.readU8()
	if err != nil {
		return nil, err
	}
	fn := &Function{}
	if hasName != 0 {
		if fn.Name, err = r.readString(); err != nil {
			return nil, err
		}
	}

	arity, err := r.readU32()
	if err != nil {
		return nil, err
	}
	fn.Arity = int(arity)

	extra, err := r.readU32()
	if err != nil {
		return nil, err
	}
	fn.ExtraRegs = int(extra)

	kind, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if kind != 0 {
		return nil, fmt.Errorf("%w: function kind 0x%02X", ErrEncoding, kind)
	}

	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	fn.Instructions = make([]Instruction, 0, count)
	for i := uint32(0); i < count; i++ {
		in, err := r.ReadInstruction()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		fn.Instructions = append(fn.Instructions, in)
	}
	return fn, nil
}

// ReadFunctions decodes a multi-function stream, checking magic and version.
func (r *Reader) ReadFunctions() ([]*Function, error) {
	if r.pos+len(StreamMagic) > len(r.data) {
		return nil, ErrUnexpectedEOF
	}
	if !bytes.Equal(r.data[r.pos:r.pos+len(StreamMagic)], StreamMagic) {
		return nil, ErrInvalidMagic
	}
	r.pos += len(StreamMagic)

	version, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if version != StreamVersion {
		return nil, fmt.Errorf("%w: got %d, support %d", ErrVersionMismatch, version, StreamVersion)
	}

	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	fns := make([]*Function, 0, count)
	for i := uint32(0); i < count; i++ {
		fn, err := r.ReadFunction()
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// DecodeFunction decodes a single-function container from data.
func DecodeFunction(data []byte) (*Function, error) {
	r := NewReader(data)
	fn, err := r.ReadFunction()
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after function", r.Remaining())
	}
	return fn, nil
}
