package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// return true if input string is one of 1, t, true, on, yes
func ToBool(input string) bool {
	input = strings.TrimSpace(input)
	input = strings.ToLower(input)

	return lo.Contains([]string{"1", "t", "true", "on", "yes"}, input)
}

// return function (closure) thats returns the <prefix>_<name> envvar if it exists, else the default value
func EnvOrDefaultFunc(prefix, envfile string) func(string, string) string {

	// load .env if it exists
	err := godotenv.Load(envfile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Println("error", err)
			log.Fatal("Error loading .env file")
		}
	}

	return func(name, defval string) string {
		key := strings.ToUpper(prefix + "_" + strings.ReplaceAll(name, "-", "_"))
		val := os.Getenv(key)
		if val != "" {
			return val
		}
		return defval
	}
}

// remove ansi color codes from string (from console output)
func NoColorCodes(input string) string {
	return stripansi.Strip(input)
}

// return true if given program is installed (found in $PATH)
func IsInstalled(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

func OsWhich(cmd string) (string, error) {
	path, err := exec.LookPath(cmd)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", cmd)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("error getting absolute path: %s", cmd)

	}
	return absPath, nil

}

func ElapsedFunc() func() time.Duration {
	startTime := time.Now()
	return func() time.Duration {
		return time.Since(startTime)
	}
}

// return humanized time delta rounded to 10ms (not to have like 1.112521806s)
func HumanDeltaMilisec(delta time.Duration) string {
	return delta.Round(10 * time.Millisecond).String()
}
