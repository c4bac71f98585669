package types

import (
	"strings"

	"github.com/rill-lang/rillc/internal/ast"
	"github.com/rill-lang/rillc/internal/errors"
)

func (c *Checker) registerInterfaces() error {
	for _, iface := range c.prog.Interfaces {
		if KnownBaseTypes[iface.Name] {
			return errors.WrapReport(errors.New("types", errors.TYP004, iface.Pos,
				"interface %q conflicts with built-in type", iface.Name))
		}
	}
	return nil
}

func (c *Checker) registerEnums() error {
	for _, enum := range c.prog.Enums {
		if KnownBaseTypes[enum.Name] {
			return errors.WrapReport(errors.New("types", errors.TYP004, enum.Pos,
				"enum %q conflicts with existing type", enum.Name))
		}
		var next int64
		seen := map[string]bool{}
		for _, v := range enum.Variants {
			if v.HasExplicit {
				next = *v.Value
			}
			val := next
			v.Value = &val
			if seen[v.Name] {
				return errors.WrapReport(errors.New("types", errors.TYP004, v.Pos,
					"duplicate enum variant %q", v.Name))
			}
			seen[v.Name] = true
			c.enumVals[v.Name] = EnumVariantInfo{EnumName: enum.Name, Value: val}
			next++
		}
	}
	return nil
}

func (c *Checker) registerClassNames() error {
	for _, cls := range c.prog.Classes {
		if KnownBaseTypes[cls.Name] {
			return errors.WrapReport(errors.New("types", errors.TYP004, cls.Pos,
				"class %q conflicts with built-in type", cls.Name))
		}
		c.classes[cls.Name] = &ClassInfo{Name: cls.Name, Fields: map[string]string{}, Methods: map[string]FuncSig{}}
	}
	return nil
}

func (c *Checker) registerStructNames() error {
	for _, st := range c.prog.Structs {
		if KnownBaseTypes[st.Name] || c.classes[st.Name] != nil {
			return errors.WrapReport(errors.New("types", errors.TYP004, st.Pos,
				"struct %q conflicts with existing type", st.Name))
		}
		c.structs[st.Name] = &StructInfo{Name: st.Name, Fields: map[string]string{}, Methods: map[string]FuncSig{}}
	}
	return nil
}

func (c *Checker) buildInterfaces() error {
	for _, iface := range c.prog.Interfaces {
		methods := map[string]FuncSig{}
		for _, ms := range iface.MethodSigs {
			if len(ms.Params) == 0 || ms.Params[0].Name != "self" {
				return errors.WrapReport(errors.New("types", errors.TYP001, ms.Pos,
					"interface method %q must have 'self' as first parameter", ms.Name))
			}
			var ptys []string
			for _, p := range ms.Params[1:] {
				if err := c.requireKnown(p.Pos, p.Ty.Name); err != nil {
					return err
				}
				ptys = append(ptys, p.Ty.Name)
			}
			if err := c.requireKnown(ms.Pos, ms.Ret.Name); err != nil {
				return err
			}
			methods[ms.Name] = FuncSig{Params: ptys, Ret: ms.Ret.Name}
		}
		c.interfaces[iface.Name] = &InterfaceInfo{Name: iface.Name, Methods: methods}
	}
	return nil
}

func (c *Checker) buildClasses() error {
	for _, cls := range c.prog.Classes {
		ci := c.classes[cls.Name]
		for _, fd := range cls.Fields {
			if err := c.requireKnown(fd.Pos, fd.Ty.Name); err != nil {
				return err
			}
			ci.Fields[fd.Name] = fd.Ty.Name
		}
		for _, m := range cls.Methods {
			if len(m.Params) == 0 || m.Params[0].Name != "self" {
				return errors.WrapReport(errors.New("types", errors.TYP001, m.Pos,
					"class method %q must have 'self' as first parameter", m.Name))
			}
			var ptys []string
			for _, p := range m.Params[1:] {
				if err := c.requireKnown(p.Pos, p.Ty.Name); err != nil {
					return err
				}
				ptys = append(ptys, p.Ty.Name)
			}
			if err := c.requireKnown(m.Pos, m.Ret.Name); err != nil {
				return err
			}
			ci.Methods[m.Name] = FuncSig{Params: ptys, Ret: m.Ret.Name}
			if m.Name == "init" {
				ci.InitParams = ptys
			}
		}

		implSet := map[string]bool{}
		for _, iname := range cls.Implements {
			ii, ok := c.interfaces[iname]
			if !ok {
				return errors.WrapReport(errors.New("types", errors.TYP003, cls.Pos,
					"class %q implements unknown interface %q", cls.Name, iname))
			}
			for mname, sig := range ii.Methods {
				got, ok := ci.Methods[mname]
				if !ok {
					return errors.WrapReport(errors.New("types", errors.TYP003, cls.Pos,
						"class %q is missing method %q required by interface %q", cls.Name, mname, iname))
				}
				if !sigsEqual(got, sig) {
					return errors.WrapReport(errors.New("types", errors.TYP003, cls.Pos,
						"method %q in class %q has signature (%s) -> %s, but interface %q requires (%s) -> %s",
						mname, cls.Name, strings.Join(got.Params, ", "), got.Ret, iname, strings.Join(sig.Params, ", "), sig.Ret))
				}
			}
			implSet[iname] = true
		}
		c.implements[cls.Name] = implSet
	}
	return nil
}

func sigsEqual(a, b FuncSig) bool {
	if a.Ret != b.Ret || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return true
}

func (c *Checker) buildStructs() error {
	for _, st := range c.prog.Structs {
		si := c.structs[st.Name]
		for _, fd := range st.Fields {
			if err := c.requireKnown(fd.Pos, fd.Ty.Name); err != nil {
				return err
			}
			if c.isRefType(fd.Ty.Name) {
				return errors.WrapReport(errors.New("types", errors.TYP001, fd.Pos,
					"struct field %q cannot have reference type %q — only value types allowed", fd.Name, fd.Ty.Name))
			}
			si.Fields[fd.Name] = fd.Ty.Name
			si.FieldOrder = append(si.FieldOrder, fd.Name)
		}
		for _, m := range st.Methods {
			if m.Name == "init" {
				return errors.WrapReport(errors.New("types", errors.TYP001, m.Pos,
					"structs cannot have 'init' methods — construction is positional by field order"))
			}
			if len(m.Params) == 0 || m.Params[0].Name != "self" {
				return errors.WrapReport(errors.New("types", errors.TYP001, m.Pos,
					"struct method %q must have 'self' as first parameter", m.Name))
			}
			var ptys []string
			for _, p := range m.Params[1:] {
				if err := c.requireKnown(p.Pos, p.Ty.Name); err != nil {
					return err
				}
				ptys = append(ptys, p.Ty.Name)
			}
			if err := c.requireKnown(m.Pos, m.Ret.Name); err != nil {
				return err
			}
			si.Methods[m.Name] = FuncSig{Params: ptys, Ret: m.Ret.Name}
		}
	}
	return nil
}

func (c *Checker) buildFuncTable() error {
	for _, f := range c.prog.Functions {
		if len(f.TypeParams) > 0 {
			c.genericFns[f.Name] = f
			continue
		}
		if err := c.requireKnown(f.Pos, f.Ret.Name); err != nil {
			return err
		}
		var ptys []string
		for _, p := range f.Params {
			if err := c.requireKnown(p.Pos, p.Ty.Name); err != nil {
				return err
			}
			ptys = append(ptys, p.Ty.Name)
		}
		if _, dup := c.funcs[f.Name]; dup {
			return errors.WrapReport(errors.New("types", errors.TYP004, f.Pos, "duplicate function %q", f.Name))
		}
		c.funcs[f.Name] = FuncSig{Params: ptys, Ret: f.Ret.Name}
	}
	return nil
}

// extractClassRefs collects every class name reachable from ty, including
// through List/Dict containers.
func (c *Checker) extractClassRefs(ty string) map[string]bool {
	refs := map[string]bool{}
	switch {
	case c.classes[ty] != nil:
		refs[ty] = true
	case IsListType(ty):
		for k := range c.extractClassRefs(ListElemType(ty)) {
			refs[k] = true
		}
	case IsDictType(ty):
		for k := range c.extractClassRefs(DictKeyType(ty)) {
			refs[k] = true
		}
		for k := range c.extractClassRefs(DictValType(ty)) {
			refs[k] = true
		}
	}
	return refs
}

// checkCircularClassRefs rejects mutual reference cycles among class
// fields (A's field holds B which holds A) since refcounting a cycle
// leaks. A class referencing itself directly (a linked-list `next`) is
// fine and excluded from the adjacency graph.
func (c *Checker) checkCircularClassRefs() error {
	adj := map[string]map[string]bool{}
	fieldLoc := map[string]map[string]ast.Pos{}
	for _, cls := range c.prog.Classes {
		adj[cls.Name] = map[string]bool{}
		locs := map[string]ast.Pos{}
		for _, fd := range cls.Fields {
			for target := range c.extractClassRefs(fd.Ty.Name) {
				if target == cls.Name {
					continue
				}
				adj[cls.Name][target] = true
				locs[target] = fd.Pos
			}
		}
		fieldLoc[cls.Name] = locs
	}

	const white, gray, black = 0, 1, 2
	color := map[string]int{}
	parent := map[string]string{}
	for n := range adj {
		color[n] = white
	}

	var dfs func(u string) []string
	dfs = func(u string) []string {
		color[u] = gray
		for v := range adj[u] {
			if _, ok := adj[v]; !ok {
				continue
			}
			if color[v] == gray {
				cycle := []string{v, u}
				cur := u
				for cur != v {
					p, ok := parent[cur]
					if !ok {
						break
					}
					cur = p
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[v] == white {
				parent[v] = u
				if cyc := dfs(v); cyc != nil {
					return cyc
				}
			}
		}
		color[u] = black
		return nil
	}

	for node := range adj {
		if color[node] != white {
			continue
		}
		cycle := dfs(node)
		if cycle == nil {
			continue
		}
		pos := c.prog.Classes[0].Pos
		if len(cycle) > 1 {
			if p, ok := fieldLoc[cycle[0]][cycle[1]]; ok {
				pos = p
			}
		}
		return errors.WrapReport(errors.New("types", errors.CYC001, pos,
			"circular class reference detected: %s — classes cannot reference each other in a cycle",
			strings.Join(cycle, " -> ")))
	}
	return nil
}

// checkCircularStructRefs rejects a struct that contains itself, directly
// or indirectly, through a nested struct field — a value type cannot be
// recursive since its size must be fixed.
func (c *Checker) checkCircularStructRefs() error {
	var cycleOf func(start string, visited map[string]bool) string
	cycleOf = func(start string, visited map[string]bool) string {
		for _, fty := range c.structs[start].Fields {
			if _, ok := c.structs[fty]; !ok {
				continue
			}
			if visited[fty] {
				return fty
			}
			visited[fty] = true
			if target := cycleOf(fty, visited); target != "" {
				return target
			}
			delete(visited, fty)
		}
		return ""
	}
	for _, st := range c.prog.Structs {
		if target := cycleOf(st.Name, map[string]bool{st.Name: true}); target != "" {
			return errors.WrapReport(errors.New("types", errors.CYC002, st.Pos,
				"struct %q contains itself (directly or indirectly) — value types cannot be recursive", st.Name))
		}
	}
	return nil
}
