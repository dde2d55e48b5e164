package activity

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	mathrand "math/rand"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	minimumFilesPerBatchConstant         = 1
	maximumFilesPerBatchConstant         = 11
	minimumFileSizeBytesConstant         = 24 * 1024
	maximumFileSizeBytesConstant         = 48 * 1024
	assetFileNameTemplateConstant        = "activity_%d_%s.bin"
	assetFileNameTokenByteCountConstant  = 4
	assetDirectoryPermissionsConstant    = fs.FileMode(0o755)
	assetFilePermissionsConstant         = fs.FileMode(0o644)
	directoryCreationFailureTemplate     = "creating asset directory %s: %w"
	fillerFileSystemMessageConstant      = "file system not configured"
	fillerClockMessageConstant           = "clock not configured"
	fillerRandomSourceMessageConstant    = "random number generator not configured"
	logMessageFileNameSkippedConstant    = "File name generation failed, skipping file"
	logMessageFileContentSkippedConstant = "File content generation failed, skipping file"
	logMessageFileWriteSkippedConstant   = "Asset file write failed, skipping file"
	logFieldAssetPathConstant            = "asset_path"
)

// Filler construction errors.
var (
	ErrFileSystemNotConfigured   = errors.New(fillerFileSystemMessageConstant)
	ErrClockNotConfigured        = errors.New(fillerClockMessageConstant)
	ErrRandomSourceNotConfigured = errors.New(fillerRandomSourceMessageConstant)
)

// FileSystem captures the file primitives the filler writer requires.
type FileSystem interface {
	MkdirAll(path string, permissions fs.FileMode) error
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RandomNumberGenerator draws uniform integers for batch shaping decisions.
type RandomNumberGenerator interface {
	IntN(upperBound int) int
}

// SystemClock implements Clock using the wall clock.
type SystemClock struct{}

// Now returns the current wall clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// PseudoRandomNumberGenerator implements RandomNumberGenerator on the
// standard pseudo random source.
type PseudoRandomNumberGenerator struct{}

// IntN returns a uniform integer in [0, upperBound).
func (PseudoRandomNumberGenerator) IntN(upperBound int) int {
	return mathrand.Intn(upperBound)
}

// FillerWriter produces batches of random asset files inside a directory.
type FillerWriter struct {
	fileSystem      FileSystem
	clock           Clock
	randomGenerator RandomNumberGenerator
	logger          *zap.Logger
}

// NewFillerWriter constructs a FillerWriter from its collaborators.
func NewFillerWriter(fileSystem FileSystem, clock Clock, randomGenerator RandomNumberGenerator, logger *zap.Logger) (*FillerWriter, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if clock == nil {
		return nil, ErrClockNotConfigured
	}
	if randomGenerator == nil {
		return nil, ErrRandomSourceNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &FillerWriter{fileSystem: fileSystem, clock: clock, randomGenerator: randomGenerator, logger: logger}, nil
}

// WriteBatch writes between 1 and 11 random files of 24 to 48 KiB into the
// asset directory, creating the directory when missing. Individual file
// failures are logged and skipped; the returned paths are the files that were
// written. Only a directory creation failure aborts the batch.
func (writer *FillerWriter) WriteBatch(assetDirectoryPath string) ([]string, error) {
	if directoryError := writer.fileSystem.MkdirAll(assetDirectoryPath, assetDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(directoryCreationFailureTemplate, assetDirectoryPath, directoryError)
	}

	fileCount := writer.drawInclusive(minimumFilesPerBatchConstant, maximumFilesPerBatchConstant)
	writtenPaths := make([]string, 0, fileCount)
	for fileIndex := 0; fileIndex < fileCount; fileIndex++ {
		fileName, nameError := writer.buildFileName()
		if nameError != nil {
			writer.logger.Warn(logMessageFileNameSkippedConstant, zap.Error(nameError))
			continue
		}
		filePath := filepath.Join(assetDirectoryPath, fileName)

		fileSize := writer.drawInclusive(minimumFileSizeBytesConstant, maximumFileSizeBytesConstant)
		fileContent := make([]byte, fileSize)
		if _, contentError := cryptorand.Read(fileContent); contentError != nil {
			writer.logger.Warn(logMessageFileContentSkippedConstant,
				zap.String(logFieldAssetPathConstant, filePath),
				zap.Error(contentError),
			)
			continue
		}

		if writeError := writer.fileSystem.WriteFile(filePath, fileContent, assetFilePermissionsConstant); writeError != nil {
			writer.logger.Warn(logMessageFileWriteSkippedConstant,
				zap.String(logFieldAssetPathConstant, filePath),
				zap.Error(writeError),
			)
			continue
		}
		writtenPaths = append(writtenPaths, filePath)
	}
	return writtenPaths, nil
}

func (writer *FillerWriter) drawInclusive(lowerBound int, upperBound int) int {
	return lowerBound + writer.randomGenerator.IntN(upperBound-lowerBound+1)
}

func (writer *FillerWriter) buildFileName() (string, error) {
	tokenBytes := make([]byte, assetFileNameTokenByteCountConstant)
	if _, tokenError := cryptorand.Read(tokenBytes); tokenError != nil {
		return "", tokenError
	}
	return fmt.Sprintf(assetFileNameTemplateConstant, writer.clock.Now().UnixNano(), hex.EncodeToString(tokenBytes)), nil
}
