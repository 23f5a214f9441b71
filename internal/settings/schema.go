package settings

// Field binds one synchronized setting name to a field of group T.
type Field[T Group] struct {
	Name   string
	decode func(group *T, value any) error
	encode func(group *T) any
}

// Schema lists the fields of group T that are mirrored to the engine. When
// Prefix is set every field name is registered as Prefix_Name.
type Schema[T Group] struct {
	Prefix string
	Fields []Field[T]
}

func (s Schema[T]) fieldName(f Field[T]) string {
	if s.Prefix == "" {
		return f.Name
	}
	return s.Prefix + "_" + f.Name
}

func newField[T Group, V any](name string, at func(*T) *V, convert func(any) (V, error), encode func(V) any) Field[T] {
	return Field[T]{
		Name: name,
		decode: func(group *T, value any) error {
			v, err := convert(value)
			if err != nil {
				return err
			}
			*at(group) = v
			return nil
		},
		encode: func(group *T) any {
			return encode(*at(group))
		},
	}
}

func identity[V any](v V) any { return v }

func Uint64Field[T Group](name string, at func(*T) *uint64) Field[T] {
	return newField(name, at, toUint64, identity[uint64])
}

func Uint32Field[T Group](name string, at func(*T) *uint32) Field[T] {
	return newField(name, at, toUint32, func(v uint32) any { return uint64(v) })
}

func Int32Field[T Group](name string, at func(*T) *int32) Field[T] {
	return newField(name, at, toInt32, func(v int32) any { return int64(v) })
}

// Float32Field widens to float64 on the way out so the engine sees a Float
// whatever the encoder picks for float32.
func Float32Field[T Group](name string, at func(*T) *float32) Field[T] {
	return newField(name, at, toFloat32, func(v float32) any { return float64(v) })
}

func BoolField[T Group](name string, at func(*T) *bool) Field[T] {
	return newField(name, at, toBool, identity[bool])
}
