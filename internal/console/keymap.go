package console

// Key binding constants used in handleKey.
const (
	KeyQuit        = "q"
	KeyCtrlC       = "ctrl+c"
	KeyStart       = "s"
	KeyStop        = "x"
	KeyFlash       = "f"
	KeyCycleCamera = "c"
	KeyDismiss     = "enter"
	KeySpace       = " "
)
