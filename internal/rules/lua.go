// Package rules loads ship and ability catalogs from Lua rules files.
//
// A rules file assigns two global arrays:
//
//	ships = {
//	  { name = "Aircraft Carrier", symbol = "A", size = 5, count = 1 },
//	  ...
//	}
//	abilities = {
//	  { name = "Bomb", symbol = "B", radius = 1, uses = 2 },
//	  ...
//	}
//
// Ids are assigned from array order. Omitting abilities yields a ruleset
// without abilities; omitting ships is an error.
package rules

import (
	"errors"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/pefman/naval-duel/internal/models"
)

var ErrInvalidRules = errors.New("invalid rules")

// LoadFile runs the Lua file at path and reads its catalog.
func LoadFile(path string) (models.Catalog, error) {
	return load(func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadString runs src as a Lua chunk and reads its catalog.
func LoadString(src string) (models.Catalog, error) {
	return load(func(L *lua.LState) error { return L.DoString(src) })
}

func load(run func(*lua.LState) error) (models.Catalog, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	// Rules files get table, string and math helpers. No io, os or file loading.
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return models.Catalog{}, fmt.Errorf("open %s: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	if err := run(L); err != nil {
		return models.Catalog{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	var cat models.Catalog
	ships, err := array(L, "ships", true)
	if err != nil {
		return models.Catalog{}, err
	}
	for i, t := range ships {
		s := models.ShipType{ID: i}
		if s.Name, err = str(t, "ships", i, "name"); err != nil {
			return models.Catalog{}, err
		}
		if s.Symbol, err = str(t, "ships", i, "symbol"); err != nil {
			return models.Catalog{}, err
		}
		if s.Size, err = integer(t, "ships", i, "size", -1); err != nil {
			return models.Catalog{}, err
		}
		if s.Count, err = integer(t, "ships", i, "count", 1); err != nil {
			return models.Catalog{}, err
		}
		cat.Ships = append(cat.Ships, s)
	}

	abilities, err := array(L, "abilities", false)
	if err != nil {
		return models.Catalog{}, err
	}
	for i, t := range abilities {
		a := models.Ability{ID: i}
		if a.Name, err = str(t, "abilities", i, "name"); err != nil {
			return models.Catalog{}, err
		}
		if a.Symbol, err = str(t, "abilities", i, "symbol"); err != nil {
			return models.Catalog{}, err
		}
		if a.Radius, err = integer(t, "abilities", i, "radius", -1); err != nil {
			return models.Catalog{}, err
		}
		if a.Uses, err = integer(t, "abilities", i, "uses", 1); err != nil {
			return models.Catalog{}, err
		}
		cat.Abilities = append(cat.Abilities, a)
	}

	if err := cat.Validate(); err != nil {
		return models.Catalog{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return cat, nil
}

// array reads global name as a sequence of tables.
func array(L *lua.LState, name string, required bool) ([]*lua.LTable, error) {
	v := L.GetGlobal(name)
	if v == lua.LNil {
		if required {
			return nil, fmt.Errorf("%w: %s is not defined", ErrInvalidRules, name)
		}
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a table, got %s", ErrInvalidRules, name, v.Type())
	}
	out := make([]*lua.LTable, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a table", ErrInvalidRules, name, i)
		}
		out = append(out, entry)
	}
	return out, nil
}

func str(t *lua.LTable, list string, i int, field string) (string, error) {
	v := t.RawGetString(field)
	s, ok := v.(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: %s[%d].%s must be a string", ErrInvalidRules, list, i+1, field)
	}
	return string(s), nil
}

// integer reads a whole number field. def < 0 makes the field required.
func integer(t *lua.LTable, list string, i int, field string, def int) (int, error) {
	v := t.RawGetString(field)
	if v == lua.LNil && def >= 0 {
		return def, nil
	}
	n, ok := v.(lua.LNumber)
	f := float64(n)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s[%d].%s must be an integer", ErrInvalidRules, list, i+1, field)
	}
	return int(n), nil
}
