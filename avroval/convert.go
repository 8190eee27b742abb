package avroval

// This file implements the native-Go-to-Avro-value conversion surface an
// external type mapper is expected to build on (mapping user structs to
// Value trees is out of scope for this package; only the primitive
// conversions are).

// FromInt8, FromInt16 and FromInt32 all produce an Avro int value; Avro has
// no narrower integer width.
func FromInt8(i int8) Value   { return Int(int32(i)) }
func FromInt16(i int16) Value { return Int(int32(i)) }
func FromInt32(i int32) Value { return Int(i) }

// FromUint8 and FromUint16 widen into an Avro int; FromUint32 widens into an
// Avro long since an Avro int cannot hold all uint32 values.
func FromUint8(u uint8) Value   { return Int(int32(u)) }
func FromUint16(u uint16) Value { return Int(int32(u)) }
func FromUint32(u uint32) Value { return Long(int64(u)) }

// FromInt64 and FromUint64 both produce an Avro long; a uint64 above
// math.MaxInt64 wraps around to a negative long, since Avro's long is a
// signed 64-bit integer.
func FromInt64(i int64) Value   { return Long(i) }
func FromUint64(u uint64) Value { return Long(int64(u)) }

func FromBool(b bool) Value      { return Boolean(b) }
func FromFloat32(f float32) Value { return Float(f) }
func FromFloat64(f float64) Value { return Double(f) }
func FromBytes(b []byte) Value    { return Bytes(b) }
func FromString(s string) Value   { return String(s) }

// FromFixed constructs a fixed value, validating the byte slice length
// against the schema's declared size.
func FromFixed(b []byte, size int) (Value, bool) {
	if len(b) != size {
		return Value{}, false
	}
	return Fixed(b), true
}
