// Package script runs unit ability scripts (spec §4.9) in a sandboxed
// gopher-lua VM: one fresh *lua.LState per evaluation, only base/table/
// string/math libraries opened, no os/io/time access. Given the same
// script source and the same caster snapshot, Eval always returns the same
// result — required for the combat simulator's determinism guarantee.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/autobattle/roomserver/internal/catalogue"
)

// Result is the ability override a script may return. Zero DamageMultiplier
// or DurationSeconds means the script omitted that field; the combat
// simulator's castAbility then keeps its default for it.
type Result struct {
	DamageMultiplier float64
	DurationSeconds  float64
}

// Eval runs src with a read-only "caster" table exposing the unit's
// composed stats, and returns the {damageMultiplier, durationSeconds}
// table it returns.
func Eval(src string, caster catalogue.StatBlock) (Result, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, open := range []lua.LGFunction{
		lua.OpenBase,
		lua.OpenTable,
		lua.OpenString,
		lua.OpenMath,
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(open), NRet: 0, Protect: true}); err != nil {
			return Result{}, fmt.Errorf("open lua stdlib: %w", err)
		}
	}

	L.SetGlobal("caster", casterTable(L, caster))

	if err := L.DoString(src); err != nil {
		return Result{}, fmt.Errorf("run ability script: %w", err)
	}

	top := L.Get(-1)
	tbl, ok := top.(*lua.LTable)
	if !ok {
		return Result{}, fmt.Errorf("ability script must return a table, got %s", top.Type())
	}

	return Result{
		DamageMultiplier: numField(tbl, "damageMultiplier"),
		DurationSeconds:  numField(tbl, "durationSeconds"),
	}, nil
}

func casterTable(L *lua.LState, s catalogue.StatBlock) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("health", lua.LNumber(s.Health))
	t.RawSetString("attack", lua.LNumber(s.Attack))
	t.RawSetString("abilityPower", lua.LNumber(s.AbilityPower))
	t.RawSetString("armor", lua.LNumber(s.Armor))
	t.RawSetString("magicResist", lua.LNumber(s.MagicResist))
	t.RawSetString("attackSpeed", lua.LNumber(s.AttackSpeed))
	t.RawSetString("range", lua.LNumber(s.Range))
	t.RawSetString("manaCap", lua.LNumber(s.ManaCap))
	t.RawSetString("moveSpeed", lua.LNumber(s.MoveSpeed))
	t.RawSetString("critChance", lua.LNumber(s.CritChance))
	t.RawSetString("critDamage", lua.LNumber(s.CritDamage))
	return t
}

func numField(t *lua.LTable, name string) float64 {
	v := t.RawGetString(name)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}
