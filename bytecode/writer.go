package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// StreamMagic identifies a multi-function bytecode stream.
var StreamMagic = []byte{'I', 'O', 'N', 'B', 'C', 0x01, 0x00, 0x00}

// StreamVersion is the current bytecode stream format version.
const StreamVersion uint32 = 1

// Writer serializes instructions, values and functions to the IonVM wire
// format: one-byte tags followed by fixed-width little-endian operand
// fields (u32 registers and counts, i32 jump offsets, f64 numbers,
// u32-length-prefixed UTF-8 strings).
type Writer struct {
	w io.Writer
}

// NewWriter creates a writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (bw *Writer) writeU8(v uint8) error {
	_, err := bw.w.Write([]byte{v})
	return err
}

func (bw *Writer) writeU32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := bw.w.Write(buf[:])
	return err
}

func (bw *Writer) writeI32(v int32) error {
	return bw.writeU32(uint32(v))
}

func (bw *Writer) writeF64(v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := bw.w.Write(buf[:])
	return err
}

func (bw *Writer) writeString(s string) error {
	if len(s) > math.MaxUint32 {
		return fmt.Errorf("%w: string length %d does not fit u32", ErrEncoding, len(s))
	}
	if err := bw.writeU32(uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(bw.w, s)
	return err
}

func (bw *Writer) writeBool(b bool) error {
	if b {
		return bw.writeU8(1)
	}
	return bw.writeU8(0)
}

// WriteValue serializes a constant value.
func (bw *Writer) WriteValue(v Value) error {
	if err := bw.writeU8(byte(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case KindNumber:
		return bw.writeF64(v.Num)
	case KindBoolean:
		return bw.writeBool(v.Bool)
	case KindAtom, KindString, KindFunction:
		return bw.writeString(v.Str)
	case KindComplex:
		if err := bw.writeF64(real(v.Complex)); err != nil {
			return err
		}
		return bw.writeF64(imag(v.Complex))
	case KindUnit, KindUndefined:
		return nil
	case KindArray, KindTuple:
		if err := bw.writeU32(uint32(len(v.Items))); err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := bw.WriteValue(item); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if err := bw.writeU32(uint32(len(v.Props))); err != nil {
			return err
		}
		for _, p := range v.Props {
			if err := bw.writeString(p.Key); err != nil {
				return err
			}
			if err := bw.WriteValue(p.Value); err != nil {
				return err
			}
			if err := bw.writeBool(p.Writable); err != nil {
				return err
			}
			if err := bw.writeBool(p.Enumerable); err != nil {
				return err
			}
			if err := bw.writeBool(p.Configurable); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownKind, byte(v.Kind))
	}
}

// WritePattern serializes a match pattern.
func (bw *Writer) WritePattern(p Pattern) error {
	if err := bw.writeU8(byte(p.Kind)); err != nil {
		return err
	}
	switch p.Kind {
	case PatternValue:
		return bw.WriteValue(p.Value)
	case PatternWildcard:
		return nil
	case PatternTuple, PatternArray:
		if err := bw.writeU32(uint32(len(p.Subs))); err != nil {
			return err
		}
		for _, sub := range p.Subs {
			if err := bw.WritePattern(sub); err != nil {
				return err
			}
		}
		return nil
	case PatternTaggedEnum:
		if err := bw.writeString(p.Tag); err != nil {
			return err
		}
		if p.Inner == nil {
			return bw.WritePattern(WildcardPattern())
		}
		return bw.WritePattern(*p.Inner)
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownPattern, byte(p.Kind))
	}
}

// WriteInstruction serializes one instruction. Operand ranges are validated
// before any bytes are written.
func (bw *Writer) WriteInstruction(in Instruction) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := bw.writeU8(byte(in.Op)); err != nil {
		return err
	}

	switch in.Op {
	case OpLoadConst:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		return bw.WriteValue(in.Const)

	case OpMove, OpSend, OpNot:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		return bw.writeU32(uint32(in.B))

	case OpAdd, OpSub, OpMul, OpDiv,
		OpGetProp, OpSetProp,
		OpEqual, OpNotEqual, OpLessThan, OpLessEqual, OpGreaterThan, OpGreaterEqual,
		OpAnd, OpOr, OpReceiveWithTimeout:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		if err := bw.writeU32(uint32(in.B)); err != nil {
			return err
		}
		return bw.writeU32(uint32(in.C))

	case OpCall, OpSpawn:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		if err := bw.writeU32(uint32(in.B)); err != nil {
			return err
		}
		if err := bw.writeU32(uint32(len(in.Args))); err != nil {
			return err
		}
		for _, a := range in.Args {
			if err := bw.writeU32(uint32(a)); err != nil {
				return err
			}
		}
		return nil

	case OpReturn, OpReceive, OpLink:
		return bw.writeU32(uint32(in.A))

	case OpJump:
		return bw.writeI32(int32(in.Offset))

	case OpJumpIfTrue, OpJumpIfFalse:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		return bw.writeI32(int32(in.Offset))

	case OpMatch:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		if err := bw.writeU32(uint32(len(in.Arms))); err != nil {
			return err
		}
		for _, arm := range in.Arms {
			if err := bw.WritePattern(arm.Pattern); err != nil {
				return err
			}
			if err := bw.writeI32(int32(arm.Offset)); err != nil {
				return err
			}
		}
		return nil

	case OpYield, OpNop:
		return nil

	case OpObjectInit:
		if err := bw.writeU32(uint32(in.A)); err != nil {
			return err
		}
		if err := bw.writeU32(uint32(len(in.Fields))); err != nil {
			return err
		}
		for _, f := range in.Fields {
			if err := bw.writeString(f.Key); err != nil {
				return err
			}
			if f.FromRegister {
				if err := bw.writeU8(objectFieldRegister); err != nil {
					return err
				}
				if err := bw.writeU32(uint32(f.Register)); err != nil {
					return err
				}
			} else {
				if err := bw.writeU8(objectFieldValue); err != nil {
					return err
				}
				if err := bw.WriteValue(f.Value); err != nil {
					return err
				}
			}
			if err := bw.writeBool(f.Writable); err != nil {
				return err
			}
			if err := bw.writeBool(f.Enumerable); err != nil {
				return err
			}
			if err := bw.writeBool(f.Configurable); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(in.Op))
	}
}

// Object field source tags on the wire.
const (
	objectFieldRegister uint8 = 2
	objectFieldValue    uint8 = 3
)

// WriteFunction serializes a single function container without a stream
// header. This is the format of a classes/*.ionc pack entry.
func (bw *Writer) WriteFunction(fn *Function) error {
	if fn.Name != "" {
		if err := bw.writeU8(1); err != nil {
			return err
		}
		if err := bw.writeString(fn.Name); err != nil {
			return err
		}
	} else {
		if err := bw.writeU8(0); err != nil {
			return err
		}
	}

	if err := checkRegister("arity", fn.Arity); err != nil {
		return err
	}
	if err := bw.writeU32(uint32(fn.Arity)); err != nil {
		return err
	}
	if err := checkRegister("extra register count", fn.ExtraRegs); err != nil {
		return err
	}
	if err := bw.writeU32(uint32(fn.ExtraRegs)); err != nil {
		return err
	}

	// Function kind: 0 = bytecode, 1 = FFI. Only bytecode functions are
	// produced here.
	if err := bw.writeU8(0); err != nil {
		return err
	}

	if err := bw.writeU32(uint32(len(fn.Instructions))); err != nil {
		return err
	}
	for i, in := range fn.Instructions {
		if err := bw.WriteInstruction(in); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

// WriteFunctions serializes a multi-function stream with the IONBC magic
// and version header.
func (bw *Writer) WriteFunctions(fns []*Function) error {
	if _, err := bw.w.Write(StreamMagic); err != nil {
		return err
	}
	if err := bw.writeU32(StreamVersion); err != nil {
		return err
	}
	if err := bw.writeU32(uint32(len(fns))); err != nil {
		return err
	}
	for _, fn := range fns {
		if err := bw.WriteFunction(fn); err != nil {
			return fmt.Errorf("function %q: %w", fn.Name, err)
		}
	}
	return nil
}
