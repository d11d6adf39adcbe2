package theme

var themes = map[string]*Theme{
	"solarized-dark": {
		Name: "Solarized Dark", IsDark: true,
		Base00: "#002b36", Base01: "#073642", Base02: "#586e75", Base03: "#657b83",
		Base04: "#839496", Base05: "#93a1a1", Base06: "#eee8d5", Base07: "#fdf6e3",
		Base08: "#dc322f", Base09: "#cb4b16", Base0A: "#b58900", Base0B: "#859900",
		Base0C: "#2aa198", Base0D: "#268bd2", Base0E: "#6c71c4", Base0F: "#d33682",
	},
	"solarized-light": {
		Name: "Solarized Light", IsDark: false,
		Base00: "#fdf6e3", Base01: "#eee8d5", Base02: "#93a1a1", Base03: "#839496",
		Base04: "#657b83", Base05: "#586e75", Base06: "#073642", Base07: "#002b36",
		Base08: "#dc322f", Base09: "#cb4b16", Base0A: "#b58900", Base0B: "#859900",
		Base0C: "#2aa198", Base0D: "#268bd2", Base0E: "#6c71c4", Base0F: "#d33682",
	},
	"dracula": {
		Name: "Dracula", IsDark: true,
		Base00: "#282936", Base01: "#3a3c4e", Base02: "#4d4f68", Base03: "#626483",
		Base04: "#62d6e8", Base05: "#e9e9f4", Base06: "#f1f2f8", Base07: "#f7f7fb",
		Base08: "#ea51b2", Base09: "#b45bcf", Base0A: "#00f769", Base0B: "#ebff87",
		Base0C: "#a1efe4", Base0D: "#62d6e8", Base0E: "#b45bcf", Base0F: "#00f769",
	},
	"nord": {
		Name: "Nord", IsDark: true,
		Base00: "#2e3440", Base01: "#3b4252", Base02: "#434c5e", Base03: "#4c566a",
		Base04: "#d8dee9", Base05: "#e5e9f0", Base06: "#eceff4", Base07: "#8fbcbb",
		Base08: "#bf616a", Base09: "#d08770", Base0A: "#ebcb8b", Base0B: "#a3be8c",
		Base0C: "#88c0d0", Base0D: "#81a1c1", Base0E: "#b48ead", Base0F: "#5e81ac",
	},
	"gruvbox-dark": {
		Name: "Gruvbox Dark", IsDark: true,
		Base00: "#282828", Base01: "#3c3836", Base02: "#504945", Base03: "#665c54",
		Base04: "#bdae93", Base05: "#d5c4a1", Base06: "#ebdbb2", Base07: "#fbf1c7",
		Base08: "#fb4934", Base09: "#fe8019", Base0A: "#fabd2f", Base0B: "#b8bb26",
		Base0C: "#8ec07c", Base0D: "#83a598", Base0E: "#d3869b", Base0F: "#d65d0e",
	},
	"gruvbox-light": {
		Name: "Gruvbox Light", IsDark: false,
		Base00: "#fbf1c7", Base01: "#ebdbb2", Base02: "#d5c4a1", Base03: "#bdae93",
		Base04: "#665c54", Base05: "#504945", Base06: "#3c3836", Base07: "#282828",
		Base08: "#9d0006", Base09: "#af3a03", Base0A: "#b57614", Base0B: "#79740e",
		Base0C: "#427b58", Base0D: "#076678", Base0E: "#8f3f71", Base0F: "#d65d0e",
	},
	"monokai": {
		Name: "Monokai", IsDark: true,
		Base00: "#272822", Base01: "#383830", Base02: "#49483e", Base03: "#75715e",
		Base04: "#a59f85", Base05: "#f8f8f2", Base06: "#f5f4f1", Base07: "#f9f8f5",
		Base08: "#f92672", Base09: "#fd971f", Base0A: "#f4bf75", Base0B: "#a6e22e",
		Base0C: "#a1efe4", Base0D: "#66d9ef", Base0E: "#ae81ff", Base0F: "#cc6633",
	},
	"one-light": {
		Name: "One Light", IsDark: false,
		Base00: "#fafafa", Base01: "#f0f0f1", Base02: "#e5e5e6", Base03: "#a0a1a7",
		Base04: "#696c77", Base05: "#383a42", Base06: "#202227", Base07: "#090a0b",
		Base08: "#ca1243", Base09: "#d75f00", Base0A: "#c18401", Base0B: "#50a14f",
		Base0C: "#0184bc", Base0D: "#4078f2", Base0E: "#a626a4", Base0F: "#986801",
	},
	"catppuccin-mocha": {
		Name: "Catppuccin Mocha", IsDark: true,
		Base00: "#1e1e2e", Base01: "#181825", Base02: "#313244", Base03: "#45475a",
		Base04: "#585b70", Base05: "#cdd6f4", Base06: "#f5e0dc", Base07: "#b4befe",
		Base08: "#f38ba8", Base09: "#fab387", Base0A: "#f9e2af", Base0B: "#a6e3a1",
		Base0C: "#94e2d5", Base0D: "#89b4fa", Base0E: "#cba6f7", Base0F: "#f2cdcd",
	},
	"catppuccin-latte": {
		Name: "Catppuccin Latte", IsDark: false,
		Base00: "#eff1f5", Base01: "#e6e9ef", Base02: "#ccd0da", Base03: "#bcc0cc",
		Base04: "#acb0be", Base05: "#4c4f69", Base06: "#dc8a78", Base07: "#7287fd",
		Base08: "#d20f39", Base09: "#fe640b", Base0A: "#df8e1d", Base0B: "#40a02b",
		Base0C: "#179299", Base0D: "#1e66f5", Base0E: "#8839ef", Base0F: "#dd7878",
	},
}
