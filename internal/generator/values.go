package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"api-test-ai/internal/schema"
)

// Synthesizer produces parameter values for generated test cases. All
// randomness flows through the injected rand source so a seeded
// Synthesizer is reproducible.
type Synthesizer struct {
	rand *rand.Rand
}

// NewSynthesizer returns a Synthesizer backed by rng. A nil rng gets a
// time-seeded source.
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rand: rng}
}

const lowercase = "abcdefghijklmnopqrstuvwxyz"

func (s *Synthesizer) randLower(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = lowercase[s.rand.Intn(len(lowercase))]
	}
	return string(b)
}

// Valid returns a plausible value for p. Precedence: Action carries the
// operation name, reserved environment parameters become {{Name}}
// placeholders, then documented Example, Default, first Enum entry, and
// finally a randomized value for the parameter type.
func (s *Synthesizer) Valid(p schema.Parameter, operation string) interface{} {
	if p.Name == schema.ActionParam && operation != "" {
		return operation
	}
	if schema.IsReservedEnv(p.Name) {
		return schema.Placeholder(p.Name)
	}
	if p.Example != nil {
		return p.Example
	}
	if p.Default != nil {
		return p.Default
	}
	if len(p.Enum) > 0 {
		return p.Enum[0]
	}

	switch p.Type {
	case schema.TypeString:
		return s.validString(p.Name)
	case schema.TypeInteger:
		return s.rand.Intn(100) + 1
	case schema.TypeNumber:
		return math.Round((s.rand.Float64()*99+1)*100) / 100
	case schema.TypeBoolean:
		return s.rand.Intn(2) == 0
	case schema.TypeArray:
		n := 2 + s.rand.Intn(2)
		items := make([]interface{}, n)
		for i := range items {
			items[i] = fmt.Sprintf("item_%d", i+1)
		}
		return items
	case schema.TypeObject:
		return map[string]interface{}{"key": fmt.Sprintf("value_%s", s.randLower(4))}
	case schema.TypeDate:
		return time.Now().UTC().Format(time.RFC3339)
	default:
		return s.validString(p.Name)
	}
}

var namePhrases = []string{
	"test instance",
	"demo resource",
	"sample environment",
	"generated fixture",
}

func (s *Synthesizer) validString(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "uuid"):
		id, err := uuid.NewRandomFromReader(s.rand)
		if err != nil {
			return uuid.New().String()
		}
		return id.String()
	case strings.Contains(lower, "id"):
		return fmt.Sprintf("%s-%s", lower, s.randLower(6))
	case strings.Contains(lower, "name") || strings.Contains(lower, "title"):
		return namePhrases[s.rand.Intn(len(namePhrases))]
	default:
		return fmt.Sprintf("test_%s_%s", lower, s.randLower(5))
	}
}

// Minimal returns a deterministic baseline value for p, used when a
// scenario wants the smallest request that should still be accepted.
func (s *Synthesizer) Minimal(p schema.Parameter, operation string) interface{} {
	if p.Name == schema.ActionParam && operation != "" {
		return operation
	}
	if schema.IsReservedEnv(p.Name) {
		return schema.Placeholder(p.Name)
	}
	if p.Example != nil {
		return p.Example
	}
	if p.Default != nil {
		return p.Default
	}
	if len(p.Enum) > 0 {
		return p.Enum[0]
	}

	switch p.Type {
	case schema.TypeString:
		return fmt.Sprintf("test_%s", strings.ToLower(p.Name))
	case schema.TypeInteger:
		return 1
	case schema.TypeNumber:
		return 1.0
	case schema.TypeBoolean:
		return true
	case schema.TypeArray:
		return []interface{}{"item_1"}
	case schema.TypeObject:
		return map[string]interface{}{"key": "value"}
	case schema.TypeDate:
		return time.Now().UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("test_%s", strings.ToLower(p.Name))
	}
}

// Invalid returns a value of the wrong type for p.
func (s *Synthesizer) Invalid(p schema.Parameter) interface{} {
	switch p.Type {
	case schema.TypeString:
		return 12345
	case schema.TypeInteger, schema.TypeNumber:
		return "not_a_number"
	case schema.TypeBoolean:
		return "not_a_boolean"
	case schema.TypeArray:
		return map[string]interface{}{"key": "value"}
	case schema.TypeObject:
		return "not_an_object"
	case schema.TypeDate:
		return "not-a-date"
	default:
		return 12345
	}
}
