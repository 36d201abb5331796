// Package pathutil manages application file paths and locations.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

const envName = "STUDYBLOCKS_ENV"

// Paths holds all application path configurations.
type Paths struct {
	configDir           string
	configFileName      string
	boltFileName        string
	sqliteFileName      string
	credentialsFileName string
	logFileName         string

	// Computed absolute paths
	configFilePath      string
	boltFilePath        string
	sqliteFilePath      string
	credentialsFilePath string
	logFilePath         string
}

var (
	paths *Paths
	once  sync.Once
)

func defaults() *Paths {
	return &Paths{
		configDir:           "studyblocks",
		configFileName:      "config.yml",
		boltFileName:        "studyblocks.db",
		sqliteFileName:      "studyblocks.sqlite",
		credentialsFileName: "credentials.json",
		logFileName:         "studyblocks.log",
	}
}

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		p := defaults()
		p.applyEnvironmentOverrides()

		initErr = p.computePaths()
		if initErr == nil {
			paths = p
		}
	})

	return initErr
}

// InitializeAt places every file under dir.
func InitializeAt(dir string) {
	p := defaults()
	p.applyEnvironmentOverrides()

	p.configFilePath = filepath.Join(dir, p.configFileName)
	p.boltFilePath = filepath.Join(dir, p.boltFileName)
	p.sqliteFilePath = filepath.Join(dir, p.sqliteFileName)
	p.credentialsFilePath = filepath.Join(dir, p.credentialsFileName)
	p.logFilePath = filepath.Join(dir, "log", p.logFileName)

	paths = p
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

func Dir() string {
	return Must().configDir
}

func ConfigFilePath() string {
	return Must().configFilePath
}

// DBFilePath returns the default database location for a storage driver.
func DBFilePath(driver string) string {
	if driver == "sqlite" {
		return Must().sqliteFilePath
	}

	return Must().boltFilePath
}

func CredentialsFilePath() string {
	return Must().credentialsFilePath
}

func LogFilePath() string {
	return Must().logFilePath
}

func (p *Paths) applyEnvironmentOverrides() {
	env := strings.TrimSpace(os.Getenv(envName))
	if env != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", env)
		p.boltFileName = fmt.Sprintf("studyblocks_%s.db", env)
		p.sqliteFileName = fmt.Sprintf("studyblocks_%s.sqlite", env)
		p.credentialsFileName = fmt.Sprintf("credentials_%s.json", env)
		p.logFileName = fmt.Sprintf("studyblocks_%s.log", env)
	}
}

func (p *Paths) computePaths() error {
	var err error

	relPath := filepath.Join(p.configDir, p.configFileName)

	p.configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		return err
	}

	dataDir, err := xdg.DataFile(p.configDir)
	if err != nil {
		return err
	}

	stateDir, err := xdg.StateFile(p.configDir)
	if err != nil {
		return err
	}

	p.boltFilePath = filepath.Join(dataDir, p.boltFileName)

	p.sqliteFilePath = filepath.Join(dataDir, p.sqliteFileName)

	p.credentialsFilePath = filepath.Join(stateDir, p.credentialsFileName)

	p.logFilePath = filepath.Join(dataDir, "log", p.logFileName)

	return nil
}
