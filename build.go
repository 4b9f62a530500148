package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

var ASM_FILE = "out.asm"
var OBJ_FILE = "out.obj"
var HASH_FILE = ".hash"
var LOCK_FILE = ".lock"

var NASM_FORMAT = "win64"
var LINK_LIBS = []string{"kernel32.lib", "msvcrt.lib"}

var OS_WINDOWS = "windows"

// Toolchain names the external programs that turn assembly into an
// executable.
type Toolchain struct {
	Nasm    string
	Linker  string
	Verbose bool
}

// defaultCache returns CEPCACHE if set, otherwise the per user cache
// directory for the current platform.
func defaultCache() string {
	if env := os.Getenv("CEPCACHE"); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case OS_WINDOWS:
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "cepheid")
		}
		return filepath.Join(homeDir, "AppData", "Local", "cepheid")

	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "cepheid")

	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "cepheid")
		}
		return filepath.Join(homeDir, ".cache", "cepheid")
	}
}

// isHashDir returns true if name is an 8-char hex string (matches asmHash format).
func isHashDir(name string) bool {
	if len(name) != 8 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// asmHash hashes the assembly together with the assembler settings.
// Returns the short hash used as a directory name and the full hash stored
// inside it to detect collisions.
func asmHash(asm string, tc Toolchain) (shortHash, fullHash string) {
	h := sha256.New()
	h.Write([]byte(tc.Nasm))
	h.Write([]byte(NASM_FORMAT))
	h.Write([]byte(asm))
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:8], fullHash
}

func nasmArgs(asmFile, objFile string) []string {
	return []string{"-f", NASM_FORMAT, "-o", objFile, asmFile}
}

func linkArgs(objFile, exeFile string) []string {
	args := []string{objFile, "/subsystem:console", "/entry:_entry", "/out:" + exeFile}
	return append(args, LINK_LIBS...)
}

// assemble writes asm into the build cache and runs nasm on it. Builds are
// keyed by the hash of their input, so an unchanged program reuses its
// object file. A file lock on the project directory keeps concurrent builds
// of the same project from interleaving writes.
func assemble(cacheDir, name, asm string, tc Toolchain) (string, error) {
	projectDir := filepath.Join(cacheDir, name)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", fmt.Errorf("create build dir: %w", err)
	}

	lock := flock.New(filepath.Join(projectDir, LOCK_FILE))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("acquire build lock: %w", err)
	}
	defer lock.Unlock()

	shortHash, fullHash := asmHash(asm, tc)
	buildDir := filepath.Join(projectDir, shortHash)
	hashFile := filepath.Join(buildDir, HASH_FILE)
	asmFile := filepath.Join(buildDir, ASM_FILE)
	objFile := filepath.Join(buildDir, OBJ_FILE)

	if storedHash, err := os.ReadFile(hashFile); err == nil {
		if _, statErr := os.Stat(objFile); statErr == nil && string(storedHash) == fullHash {
			if tc.Verbose {
				fmt.Printf("Using cached object: %s\n", objFile)
			}
			return objFile, nil
		}
		// Hash collision or corrupted cache - rebuild
		fmt.Printf("Build hash mismatch, rebuilding: %s\n", buildDir)
		os.RemoveAll(buildDir)
	}

	// Keep 5 most recent builds, only delete if older than 1 week
	cleanupOldBuilds(projectDir, 5, 7*24*60*60)

	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return "", fmt.Errorf("create build dir: %w", err)
	}
	if err := os.WriteFile(asmFile, []byte(asm), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", asmFile, err)
	}

	if tc.Verbose {
		fmt.Printf("Assembling: %s\n", asmFile)
	}
	if out, err := exec.Command(tc.Nasm, nasmArgs(asmFile, objFile)...).CombinedOutput(); err != nil {
		return "", fmt.Errorf("assembly failed: %v\n%s", err, out)
	}

	// Store full hash after successful assembly (acts as completion marker)
	if err := os.WriteFile(hashFile, []byte(fullHash), 0644); err != nil {
		return "", fmt.Errorf("write hash file: %w", err)
	}
	return objFile, nil
}

// link turns objFile into exeFile.
func link(objFile, exeFile string, tc Toolchain) error {
	if tc.Verbose {
		fmt.Printf("Linking: %s\n", exeFile)
	}
	if out, err := exec.Command(tc.Linker, linkArgs(objFile, exeFile)...).CombinedOutput(); err != nil {
		return fmt.Errorf("linking failed: %v\n%s", err, out)
	}
	return nil
}

// cleanupOldBuilds removes old build hash directories.
// Only deletes directories older than minAge AND keeps at least 'keep' most recent.
// This prevents deleting build dirs that may still be in use by concurrent processes.
func cleanupOldBuilds(projectDir string, keep int, minAge int64) {
	entries, err := os.ReadDir(projectDir)
	if err != nil || len(entries) <= keep {
		return
	}

	type dirInfo struct {
		name  string
		mtime int64
	}
	var dirs []dirInfo
	for _, e := range entries {
		if e.IsDir() && isHashDir(e.Name()) {
			if info, err := e.Info(); err == nil {
				dirs = append(dirs, dirInfo{e.Name(), info.ModTime().Unix()})
			}
		}
	}

	if len(dirs) <= keep {
		return
	}

	// Sort by mtime ascending (oldest first), remove oldest if older than minAge
	cutoff := time.Now().Unix() - minAge
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].mtime < dirs[j].mtime })
	for i := 0; i < len(dirs)-keep; i++ {
		if dirs[i].mtime < cutoff {
			path := filepath.Join(projectDir, dirs[i].name)
			if err := os.RemoveAll(path); err != nil {
				fmt.Printf("warning: failed to remove old build %s: %v\n", path, err)
			}
		}
	}
}
