package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Application directory names
const (
	AppName             = "QuickYTDL"
	VideosDirName       = "Videos"
	SaveDirSuffix       = " Downloads"
	FallbackSaveDirName = AppName + "_Downloads"
)

// Naming constants
const (
	MaxDirNameLength    = 50
	TruncateSuffix      = "..."
	MaxTitleFileLength  = 120
	OutputIndexWidth    = 3
	OutputNameSeparator = " - "
	DefaultFileTitle    = "video"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// File extensions of partial downloads
var (
	SkippedExtensions = []string{".part", ".ytdl", ".tmp"}
)

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path is empty")
	}
	info, err := os.Stat(dirPath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dirPath)
		}
		return nil
	}
	return os.MkdirAll(dirPath, DefaultDirPermissions)
}

// GetDefaultSaveDir returns ~/Videos/QuickYTDL Downloads, falling back to a
// folder under the working directory when the home directory is unusable.
func GetDefaultSaveDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, VideosDirName, AppName+SaveDirSuffix)
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, FallbackSaveDirName)
	}
	return FallbackSaveDirName
}

// GetConfigDir returns the per-user configuration directory of the app
func GetConfigDir() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("failed to locate config directory: %w", err)
		}
		root = filepath.Join(home, ".config")
	}
	return filepath.Join(root, AppName), nil
}

// SanitizeFilename strips characters that are illegal in filenames on most filesystems
func SanitizeFilename(name string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(name, ""))
}

// TruncateName shortens name to max runes, marking the cut with TruncateSuffix
func TruncateName(name string, max int) string {
	if max <= 0 || utf8.RuneCountInString(name) <= max {
		return name
	}
	runes := []rune(name)
	keep := max - utf8.RuneCountInString(TruncateSuffix)
	if keep < 1 {
		keep = 1
	}
	return strings.TrimSpace(string(runes[:keep])) + TruncateSuffix
}

// OutputStem builds the collision-free "<NNN> - <title>" file stem for a batch row.
// index is the 0-based batch index; the prefix is 1-based.
func OutputStem(index int, title string) string {
	name := SanitizeFilename(title)
	if name == "" {
		name = DefaultFileTitle
	}
	if utf8.RuneCountInString(name) > MaxTitleFileLength {
		name = string([]rune(name)[:MaxTitleFileLength])
	}
	return fmt.Sprintf("%0*d%s%s", OutputIndexWidth, index+1, OutputNameSeparator, name)
}

// FindExistingOutput returns the first complete file in dir named stem.<ext>
func FindExistingOutput(dir, stem string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, stem+".") || isPartialFile(name) {
			continue
		}
		return filepath.Join(dir, name), true
	}
	return "", false
}

func isPartialFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// OpenFolder opens dir in the system file manager
func OpenFolder(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("folder does not exist: %w", err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, absPath).Run()
	case OSLinux:
		return openFolderLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFolderLinux tries xdg-open first, then common file managers
func openFolderLinux(dir string) error {
	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}
