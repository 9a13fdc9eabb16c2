// Package script loads user extension scripts written in Lua. A script
// registers extra tables, categories, and feature triggers against an
// `undercroft` module, so players can grow the content without recompiling.
package script

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/undercroft/internal/core/table"
	"github.com/louisbranch/undercroft/internal/generator"
)

const moduleName = "undercroft"

// Extension is everything a script contributed: tables validated through
// table.New, extra room categories, and feature triggers.
type Extension struct {
	Tables     []*table.Table
	Categories []string
	Triggers   []generator.Trigger
}

// Load runs a Lua extension file and collects its registrations. A table
// that fails validation aborts the load with that table's InvalidTableError.
func Load(path string) (*Extension, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	ext := &Extension{}
	registerModule(state, ext)

	if err := lua.DoFile(state, path); err != nil {
		return nil, fmt.Errorf("run extension %s: %w", path, err)
	}
	return ext, nil
}

// registerModule exposes the undercroft module as a global table.
func registerModule(state *lua.State, ext *Extension) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "add_table", Function: addTableFunc(ext)},
		{Name: "add_category", Function: addCategoryFunc(ext)},
		{Name: "add_trigger", Function: addTriggerFunc(ext)},
	}, 0)
	state.SetGlobal(moduleName)
}

// addTableFunc implements undercroft.add_table{name=..., entries={{...}}}.
func addTableFunc(ext *Extension) lua.Function {
	return func(state *lua.State) int {
		lua.CheckType(state, 1, lua.TypeTable)

		info := table.Info{
			Name:        stringField(state, 1, "name"),
			Description: stringField(state, 1, "description"),
			Category:    stringField(state, 1, "category"),
			Theme:       stringField(state, 1, "theme"),
		}

		state.Field(1, "entries")
		if state.TypeOf(-1) != lua.TypeTable {
			lua.Errorf(state, "add_table: entries table is required")
			return 0
		}
		entries := entriesFromLua(state)
		state.Pop(1)

		tbl, err := table.New(info, entries)
		if err != nil {
			lua.Errorf(state, "add_table: %s", err.Error())
			return 0
		}
		ext.Tables = append(ext.Tables, tbl)
		return 0
	}
}

// addCategoryFunc implements undercroft.add_category(name).
func addCategoryFunc(ext *Extension) lua.Function {
	return func(state *lua.State) int {
		name := lua.CheckString(state, 1)
		if name == "" {
			lua.ArgumentError(state, 1, "category name expected")
			return 0
		}
		ext.Categories = append(ext.Categories, name)
		return 0
	}
}

// addTriggerFunc implements undercroft.add_trigger(feature, table).
func addTriggerFunc(ext *Extension) lua.Function {
	return func(state *lua.State) int {
		feature := lua.CheckString(state, 1)
		target := lua.CheckString(state, 2)
		if feature == "" {
			lua.ArgumentError(state, 1, "feature name expected")
			return 0
		}
		if target == "" {
			lua.ArgumentError(state, 2, "table name expected")
			return 0
		}
		ext.Triggers = append(ext.Triggers, generator.Trigger{Feature: feature, Table: target})
		return 0
	}
}

// entriesFromLua reads the entry array at the top of the stack.
func entriesFromLua(state *lua.State) []table.Entry {
	var entries []table.Entry
	index := state.AbsIndex(-1)
	length := state.RawLength(index)
	for i := 1; i <= length; i++ {
		state.RawGetInt(index, i)
		if state.TypeOf(-1) == lua.TypeTable {
			entries = append(entries, table.Entry{
				Name:   stringField(state, -1, "name"),
				Min:    intField(state, -1, "min"),
				Max:    intField(state, -1, "max"),
				Reroll: boolField(state, -1, "roll_again"),
			})
		}
		state.Pop(1)
	}
	return entries
}

func stringField(state *lua.State, index int, key string) string {
	index = state.AbsIndex(index)
	state.Field(index, key)
	value, _ := state.ToString(-1)
	state.Pop(1)
	return value
}

func intField(state *lua.State, index int, key string) int {
	index = state.AbsIndex(index)
	state.Field(index, key)
	value, _ := state.ToInteger(-1)
	state.Pop(1)
	return value
}

func boolField(state *lua.State, index int, key string) bool {
	index = state.AbsIndex(index)
	state.Field(index, key)
	value := state.ToBoolean(-1)
	state.Pop(1)
	return value
}
