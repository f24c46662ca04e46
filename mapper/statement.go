// Package mapper holds named SQL statements and binds them to parameters.
//
// Statement text uses named placeholders:
//
//	SELECT * FROM orders
//	WHERE status = #{status}
//	  AND customer_id IN (#{customers[].id})
//	  AND created_at > #{since, converter=unixtime}
//
// A path followed by [] expands to one placeholder per element of the
// collection. Each element is bound as an auxiliary parameter named
// "__frch_<collection>_<site>_<i>", where site counts the expansions in the
// statement, and the remainder of the path (".id" above) is read from that
// element.
package mapper

import (
	"fmt"
	"strings"

	"github.com/syssam/pager/convert"
	"github.com/syssam/pager/dialect"
	"github.com/syssam/pager/mapper/meta"
)

// ItemPrefix prefixes the names of auxiliary bindings created by
// collection expansion.
const ItemPrefix = "__frch_"

// ParameterMode tells whether a parameter supplies or receives a value.
type ParameterMode int

// Parameter modes.
const (
	ModeIn ParameterMode = iota
	ModeOut
	ModeInOut
)

// String implements fmt.Stringer.
func (m ParameterMode) String() string {
	switch m {
	case ModeOut:
		return "out"
	case ModeInOut:
		return "inout"
	}
	return "in"
}

// ParameterMapping describes the value bound to one placeholder.
type ParameterMapping struct {
	Property  string
	Mode      ParameterMode
	Converter convert.Converter // nil when no converter could be resolved
}

// Statement is a named, parsed SQL template.
type Statement struct {
	ID          string
	Description string
	text        string
	parts       []part
}

// part is either literal SQL or a placeholder.
type part struct {
	literal   string
	param     bool
	path      string // collection path for expansions
	expand    bool
	sub       string // element sub-path, e.g. ".id"
	mode      ParameterMode
	converter string
}

// NewStatement parses text into a Statement.
func NewStatement(id, text string) (*Statement, error) {
	parts, err := parse(text)
	if err != nil {
		return nil, fmt.Errorf("pager/mapper: statement %s: %w", id, err)
	}
	return &Statement{ID: id, text: text, parts: parts}, nil
}

// MustStatement is like NewStatement but panics on error.
func MustStatement(id, text string) *Statement {
	s, err := NewStatement(id, text)
	if err != nil {
		panic(err)
	}
	return s
}

// Text returns the unparsed statement text.
func (s *Statement) Text() string { return s.text }

func parse(text string) ([]part, error) {
	var parts []part
	for {
		i := strings.Index(text, "#{")
		if i < 0 {
			break
		}
		j := strings.IndexByte(text[i:], '}')
		if j < 0 {
			return nil, fmt.Errorf("unterminated placeholder at %q", text[i:])
		}
		if i > 0 {
			parts = append(parts, part{literal: text[:i]})
		}
		p, err := parsePlaceholder(text[i+2 : i+j])
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
		text = text[i+j+1:]
	}
	if text != "" {
		parts = append(parts, part{literal: text})
	}
	return parts, nil
}

func parsePlaceholder(body string) (part, error) {
	fields := strings.Split(body, ",")
	p := part{param: true, path: strings.TrimSpace(fields[0]), converter: "default"}
	if p.path == "" {
		return part{}, fmt.Errorf("empty placeholder")
	}
	if coll, sub, ok := strings.Cut(p.path, "[]"); ok {
		if sub != "" && !strings.HasPrefix(sub, ".") && !strings.HasPrefix(sub, "[") {
			return part{}, fmt.Errorf("invalid expansion %q", p.path)
		}
		p.path, p.sub, p.expand = coll, sub, true
	}
	for _, opt := range fields[1:] {
		k, v, _ := strings.Cut(opt, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch k {
		case "converter":
			p.converter = v
		case "mode":
			switch strings.ToLower(v) {
			case "in":
				p.mode = ModeIn
			case "out":
				p.mode = ModeOut
			case "inout":
				p.mode = ModeInOut
			default:
				return part{}, fmt.Errorf("invalid mode %q in #{%s}", v, body)
			}
		default:
			return part{}, fmt.Errorf("unknown option %q in #{%s}", k, body)
		}
	}
	return p, nil
}

// Bind renders the statement for param using the placeholder style of the
// given dialect. Converters named in the template are resolved from types;
// a name that is not registered leaves the mapping without a converter.
func (s *Statement) Bind(param any, dialectName string, types *convert.Registry) (*BoundSQL, error) {
	var (
		sb       strings.Builder
		mappings []ParameterMapping
		bound    = &BoundSQL{param: param}
		site     int
	)
	placeholder := func(property string, p part) {
		c, _ := types.Named(p.converter)
		mappings = append(mappings, ParameterMapping{Property: property, Mode: p.mode, Converter: c})
		sb.WriteString(dialect.Placeholder(dialectName, len(mappings)))
	}
	for _, p := range s.parts {
		switch {
		case !p.param:
			sb.WriteString(p.literal)
		case !p.expand:
			placeholder(p.path, p)
		default:
			coll := param
			if p.path != "" {
				v, err := meta.Get(param, p.path)
				if err != nil {
					return nil, fmt.Errorf("pager/mapper: statement %s: %w", s.ID, err)
				}
				coll = v
			}
			elems, err := meta.Elements(coll)
			if err != nil {
				return nil, fmt.Errorf("pager/mapper: statement %s: expand %q: %w", s.ID, p.path, err)
			}
			if len(elems) == 0 {
				sb.WriteString("NULL")
				continue
			}
			for i, e := range elems {
				if i > 0 {
					sb.WriteString(", ")
				}
				name := itemName(p.path, site, i)
				bound.SetAdditionalParam(name, e)
				placeholder(name+p.sub, p)
			}
			site++
		}
	}
	bound.sql = sb.String()
	bound.mappings = mappings
	return bound, nil
}

// itemName returns the auxiliary binding name of element i of the
// collection expanded at the given site. The trailing site and index keep
// names distinct when two sanitized paths coincide, as "a.b" and "a_b" do.
func itemName(path string, site, i int) string {
	r := strings.NewReplacer(".", "_", "[", "_", "]", "")
	return fmt.Sprintf("%s%s_%d_%d", ItemPrefix, r.Replace(path), site, i)
}
