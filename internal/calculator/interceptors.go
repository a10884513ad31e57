package calculator

import (
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/logging"
)

// VariationAttr is the IAdd interface attribute Pre0 subtracts from the
// second operand. It defaults to the Adder's built-in error of 8.
const VariationAttr = "Variation"

// CaesarKey is the shift Pre1 applies to Display messages.
const CaesarKey = 12

// Interceptors is a hook host with the sample pre and post methods.
type Interceptors struct {
	rt     core.Runtime
	logger logging.Logger
	adder  string
}

// NewInterceptors returns the sample hooks. adderName is the instance name
// of the Adder whose IAdd attributes Pre0 and CheckRules consult.
func NewInterceptors(rt core.Runtime, adderName string, logger logging.Logger) *Interceptors {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Interceptors{rt: rt, logger: logger, adder: adderName}
}

func (i *Interceptors) adderDelegator() (core.Delegator, bool) {
	h, ok := i.rt.ComponentByName(i.adder)
	if !ok {
		return nil, false
	}
	return i.rt.Delegator(h, IAdd)
}

// Pre0 corrects the Adder by subtracting the IAdd Variation attribute from
// the second operand.
func (i *Interceptors) Pre0(method string, args []any) int {
	variation := 8
	if d, ok := i.adderDelegator(); ok {
		if attr, ok := d.AttributeValue(VariationAttr); ok {
			if v, ok := attr.Int(); ok {
				variation = v
			}
		}
	}

	if len(args) > 1 {
		if y, ok := args[1].(int); ok {
			args[1] = y - variation
		}
	}

	return 0
}

// Pre1 Caesar-encodes the first string argument.
func (i *Interceptors) Pre1(method string, args []any) int {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			args[0] = Encode(s, CaesarKey)
		}
	}

	return 0
}

// Post0 logs the intercepted method and keeps the result.
func (i *Interceptors) Post0(method string, args []any) int {
	i.logger.Info("Post intercepting method", "method", method)
	return 0
}

// CheckRules halts the call unless every receptacle-scope attribute of the
// calculator's IAdd receptacle matches the same attribute on the Adder's IAdd
// delegator.
func (i *Interceptors) CheckRules(method string, args []any) int {
	calc, ok := i.rt.ComponentByName(TypeCalculator)
	if !ok {
		return 0
	}

	meta, ok := calc.QueryInterface(core.IMetaInterface).(core.MetaInterface)
	if !ok {
		return 0
	}

	rules := meta.AllValues(core.ScopeReceptacle, IAdd)
	if len(rules) == 0 {
		return 0
	}

	d, ok := i.adderDelegator()
	if !ok {
		return -1
	}

	for name, rule := range rules {
		got, ok := d.AttributeValue(name)
		if !ok || !got.Equal(rule.Value) {
			return -1
		}
	}

	return 0
}

// Encode shifts every rune of word up by key.
func Encode(word string, key int) string {
	out := []rune(word)
	for i := range out {
		out[i] += rune(key)
	}
	return string(out)
}

// Decode undoes Encode.
func Decode(word string, key int) string {
	return Encode(word, -key)
}
