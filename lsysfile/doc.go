// SPDX-License-Identifier: MIT

// Package lsysfile reads .lsystem and .lsyslib files and links them into a
// runnable lsystem.System.
//
// A file is a list of lines. Blank lines are dropped, "##" starts a comment
// line, "#name parameter" is a directive and everything else is a rule:
//
//	#axiom <symbols>            origin file only
//	#iterations <int>           origin file only
//	#symbols <chars>            declares the file's alphabet (repeatable)
//	#matches <chars>            symbols the file's contexts can see (repeatable)
//	#global <chars>             symbols shared by every file declaring them
//	#ignore <chars>             symbols context matching walks over
//	#runtime <name> <float>     global runtime parameter with its default
//	#define <name> <text>       whole-word substitution applied to rules
//	#include <path> (Name->c)…  link a library, importing its exports
//	#export <Name> <c>          library files only
//
// Files ending in ".lsyslib" are libraries. Branch symbols '[' and ']' are
// part of every alphabet and always global.
//
// Linking resolves includes through a FileProvider, sorts files leaf first,
// and gives every character of every file an integer symbol code: globals
// share one code, imports take the code of the export they name, and every
// other character gets a code of its own. Each file becomes one rule group.
package lsysfile
