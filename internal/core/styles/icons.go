package styles

// Plain unicode so the editor renders without a patched font.
var (
	IconDirty   = "●"
	IconInfo    = "•"
	IconWarning = "!"
	IconError   = "✗"
	IconBusy    = "…"
)
