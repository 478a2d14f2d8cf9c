// Package config loads the server configuration.
//
// Settings are layered, higher layers overriding lower ones:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Arguments  │  ← Highest priority (cmd/textscreen)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TEXTSCREEN_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A Watcher reloads the file when it changes on disk.
package config
