package schema

import "strings"

// String renders a record's Parsing Canonical Form: name and type qualified
// by fullname, fields in declaration order, each reduced to name and type.
// doc, aliases, default and order are all stripped per the PCF transformation
// rules.
func (s *RecordSchema) String() string {
	var b strings.Builder
	b.WriteString(`{"name":"`)
	b.WriteString(s.FullName())
	b.WriteString(`","type":"record","fields":[`)
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"name":"`)
		b.WriteString(f.name)
		b.WriteString(`","type":`)
		b.WriteString(f.typ.String())
		b.WriteByte('}')
	}
	b.WriteString(`]}`)
	return b.String()
}

// String renders an enum's Parsing Canonical Form.
func (s *EnumSchema) String() string {
	var b strings.Builder
	b.WriteString(`{"name":"`)
	b.WriteString(s.FullName())
	b.WriteString(`","type":"enum","symbols":[`)
	for i, sym := range s.symbols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(sym)
		b.WriteByte('"')
	}
	b.WriteString(`]}`)
	return b.String()
}

// String renders a fixed's Parsing Canonical Form.
func (s *FixedSchema) String() string {
	var b strings.Builder
	b.WriteString(`{"name":"`)
	b.WriteString(s.FullName())
	b.WriteString(`","type":"fixed","size":`)
	b.WriteString(itoa(s.size))
	b.WriteByte('}')
	return b.String()
}

// String renders an array's Parsing Canonical Form.
func (s *ArraySchema) String() string {
	return `{"type":"array","items":` + s.items.String() + `}`
}

// String renders a map's Parsing Canonical Form.
func (s *MapSchema) String() string {
	return `{"type":"map","values":` + s.values.String() + `}`
}

// String renders a union's Parsing Canonical Form: a JSON array of the
// branches' own canonical forms, in declared order.
func (s *UnionSchema) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, br := range s.branches {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(br.String())
	}
	b.WriteByte(']')
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
