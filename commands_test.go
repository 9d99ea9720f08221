package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"costconsole/config"
	"costconsole/handlers"
	"costconsole/locales"
	"costconsole/services"
)

func TestPrintTree(t *testing.T) {
	nodes := []services.TreeNode{
		{
			UniqueID: "f_1", Kind: services.KindFolder, DisplayName: "Private folder", Expanded: true, ChildrenLoaded: true,
			Children: []services.TreeNode{
				{UniqueID: "p_10", Kind: services.KindProject, DisplayName: "Bracket line", Depth: 1},
				{UniqueID: "part_30", Kind: services.KindTool, DisplayName: "Press die", Depth: 1},
			},
		},
		{UniqueID: "f_2", Kind: services.KindFolder, DisplayName: "Public folder"},
	}

	var buf bytes.Buffer
	printTree(&buf, nodes)

	assert.Equal(t, ""+
		"- Private folder [folder] f_1\n"+
		"  + Bracket line [project] p_10\n"+
		"    Press die [tool] part_30\n"+
		"+ Public folder [folder] f_2\n", buf.String())
}

func TestCommandLanguage(t *testing.T) {
	env := &handlers.Env{Config: &config.Configuration{DefaultLanguage: "en"}}

	assert.Equal(t, locales.English, commandLanguage(env, ""))
	assert.Equal(t, locales.Korean, commandLanguage(env, "ko"))
	assert.Equal(t, locales.English, commandLanguage(env, "??"))
	assert.Equal(t, locales.Korean, commandLanguage(&handlers.Env{}, ""))
}
