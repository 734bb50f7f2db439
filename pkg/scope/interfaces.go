package scope

// Witness records how a concrete type satisfies an interface: which
// function backs each required operation. Returned so callers (the
// resolver) can memoize satisfaction checks and get the same witness set
// back on a repeated query (spec §8 invariant 7: "Interface resolution
// idempotence").
type Witness struct {
	Interface string
	Concrete  Type
	Methods   map[string]*Function // required method name -> chosen implementation
}

// satisfactionCache memoizes (interfaceName, concreteType.String()) ->
// Witness so repeated satisfaction queries for the same pair return the
// identical witness set, satisfying spec §8 invariant 7 without redoing the
// scope walk each time.
var satisfactionCache = map[string]*Witness{}

func cacheKey(iface string, t Type) string { return iface + "##" + t.String() }

// Satisfies checks whether concrete type t satisfies interface iface: for
// every required method, s must contain a function of the same name where
// every interface-typed position has been replaced by t consistently, and
// every required field must exist on t with the required type (spec §4.4).
func Satisfies(s *Scope, iface Interface, t Type) (*Witness, bool) {
	key := cacheKey(iface.Name, t)
	if w, ok := satisfactionCache[key]; ok {
		return w, true
	}

	if !fieldsSatisfied(iface, t) {
		return nil, false
	}

	witness := &Witness{Interface: iface.Name, Concrete: t, Methods: map[string]*Function{}}
	for _, req := range iface.Methods {
		fn, ok := findMatchingFunction(s, req, iface, t)
		if !ok {
			return nil, false
		}
		witness.Methods[req.Name] = fn
	}

	satisfactionCache[key] = witness
	return witness, true
}

func fieldsSatisfied(iface Interface, t Type) bool {
	prod, ok := Resolve(t).(Product)
	if len(iface.Fields) == 0 {
		return true
	}
	if !ok {
		return false
	}
	for _, want := range iface.Fields {
		found := false
		for _, have := range prod.Fields {
			if have.Name == want.Name && Equal(have.Type, want.Type) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// findMatchingFunction looks for a function named req.Name in s whose
// parameter/return types equal req's signature with every occurrence of
// the interface type substituted for t.
func findMatchingFunction(s *Scope, req MethodSig, iface Interface, t Type) (*Function, bool) {
	entity, _, ok := s.Get(req.Name)
	if !ok || entity.Kind != KindFunctionSet {
		return nil, false
	}

	wantParams := substituteInterface(req.Params, iface, t)
	wantReturn := substituteInterfaceOne(req.ReturnType, iface, t)

	for _, fn := range entity.Functions {
		if len(fn.Parameters) != len(wantParams) {
			continue
		}
		match := true
		for i, p := range fn.Parameters {
			if !Equal(p.Type, wantParams[i]) {
				match = false
				break
			}
		}
		if match && Equal(fn.ReturnType, wantReturn) {
			return fn, true
		}
	}
	return nil, false
}

func substituteInterface(types []Type, iface Interface, t Type) []Type {
	out := make([]Type, len(types))
	for i, ty := range types {
		out[i] = substituteInterfaceOne(ty, iface, t)
	}
	return out
}

func substituteInterfaceOne(ty Type, iface Interface, t Type) Type {
	if i, ok := ty.(Interface); ok && i.Name == iface.Name {
		return t
	}
	return ty
}
