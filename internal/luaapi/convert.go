package luaapi

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// tableToMap converts a Lua table to a string-keyed Go map suitable for
// configuration overrides. Non-string keys are stringified.
func tableToMap(tbl *lua.LTable) map[string]any {
	result := make(map[string]any)
	tbl.ForEach(func(k, v lua.LValue) {
		result[luaKey(k)] = luaValue(v)
	})
	return result
}

// luaKey renders a table key as a map key.
func luaKey(k lua.LValue) string {
	switch key := k.(type) {
	case lua.LString:
		return string(key)
	case lua.LNumber:
		return fmt.Sprintf("%v", float64(key))
	default:
		return k.String()
	}
}

// luaValue converts a Lua value to the Go value the configuration
// layers understand. Numbers become float64, which the typed getters
// coerce on read.
func luaValue(v lua.LValue) any {
	if v == nil || v == lua.LNil {
		return nil
	}

	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return tableValue(val)
	default:
		return v.String()
	}
}

// tableValue converts a table to a slice when its keys are contiguous
// integers starting at 1, and to a map otherwise. Sparse integer keys
// fall through to the map form rather than padding with nils.
func tableValue(tbl *lua.LTable) any {
	isArray := true
	maxIdx := 0
	count := 0
	tbl.ForEach(func(k, _ lua.LValue) {
		count++
		num, ok := k.(lua.LNumber)
		if !ok {
			isArray = false
			return
		}
		idx := int(num)
		if float64(idx) != float64(num) || idx < 1 {
			isArray = false
			return
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	})

	if isArray && maxIdx > 0 && count == maxIdx {
		arr := make([]any, maxIdx)
		tbl.ForEach(func(k, v lua.LValue) {
			if num, ok := k.(lua.LNumber); ok {
				arr[int(num)-1] = luaValue(v)
			}
		})
		return arr
	}

	return tableToMap(tbl)
}
