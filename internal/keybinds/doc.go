/*
Package keybinds provides customizable keyboard binding management for the
terminal UI.

# Key Concepts

Keys map to actions within a context. A context-specific binding wins over
a global one, so the same key can mean different things in the endpoint
list and in the history browser:

  - Global: ctrl+ keys available everywhere
  - List: endpoint list focused
  - Form: parameter form focused; unbound keys are typed into the field
  - Search/Filter: single-line prompts
  - History/Stats/Help: modal viewers

Multi-key sequences made of a repeated character ("gg") are matched with
MatchMultiKey.

# Configuration File Format

Overrides live in keybinds.json next to the settings file. Each context maps
an action to a comma-separated list of keys; listing an action replaces its
default keys in that context. Comments are allowed.

	{
	  "version": "1.0",
	  // vim-ish movement in the list
	  "list": {
	    "navigate_up": "up,k,ctrl+p",
	    "execute": "x,ctrl+r"
	  },
	  "history": {
	    "history_clear": "D"
	  }
	}

ctrl+c is reserved for quit_force and cannot be rebound.
*/
package keybinds
