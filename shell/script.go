package shell

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("uros_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// luaCmd adapts a shell command handler into a lua global that takes the
// argument string and returns the command's message.
func luaCmd(name string, handler func(sc *ShellController, cmd *shellcmd) (*Response, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := strings.TrimSpace(L.ToString(1))
		sc := getShell(L)
		line := name
		if lv != "" {
			line = name + " " + lv
		}
		cmd, err := extractFields(line)
		if err != nil {
			log.Err(err).Str("cmd", name).Msg("error-parsing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := handler(sc, cmd)
		if err != nil {
			log.Err(err).Str("cmd", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(r.message))
		return 1
	}
}

// script runs a lua file with the shell's commands exposed as uros_*
// globals, plus http and json modules for scripts that talk to external
// services.
func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{}).Loader)
	luajson.Preload(L)

	L.SetGlobal("uros_shell", lsc)
	L.SetGlobal("uros_new", L.NewFunction(luaCmd("new", (*ShellController).newGame)))
	L.SetGlobal("uros_show", L.NewFunction(luaCmd("show", (*ShellController).show)))
	L.SetGlobal("uros_place", L.NewFunction(luaCmd("place", (*ShellController).place)))
	L.SetGlobal("uros_house", L.NewFunction(luaCmd("house", (*ShellController).house)))
	L.SetGlobal("uros_rotate", L.NewFunction(luaCmd("rotate", (*ShellController).rotate)))
	L.SetGlobal("uros_gen", L.NewFunction(luaCmd("gen", (*ShellController).generate)))
	L.SetGlobal("uros_autoplace", L.NewFunction(luaCmd("autoplace", (*ShellController).autoplace)))
	L.SetGlobal("uros_bot", L.NewFunction(luaCmd("bot", (*ShellController).botMove)))
	L.SetGlobal("uros_minimax", L.NewFunction(luaCmd("minimax", (*ShellController).minimax)))
	L.SetGlobal("uros_villages", L.NewFunction(luaCmd("villages", (*ShellController).villages)))
	L.SetGlobal("uros_set", L.NewFunction(luaCmd("set", (*ShellController).set)))
	L.SetGlobal("uros_vs", L.NewFunction(luaCmd("vs", (*ShellController).vs)))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("script failed")
		return nil, err
	}
	return nil, nil
}
