package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TempStore выдает каждому запросу отдельную временную директорию
// под пару файлов вход/выход
type TempStore struct {
	baseDir string
	logger  *logrus.Logger
}

// NewTempStore создает хранилище; пустой baseDir означает os.TempDir()
func NewTempStore(baseDir string, logger *logrus.Logger) *TempStore {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &TempStore{baseDir: baseDir, logger: logger}
}

// Workspace временная директория одного запроса
type Workspace struct {
	ID         string
	Dir        string
	InputPath  string
	OutputPath string
	logger     *logrus.Logger
}

// Open создает директорию запроса. Вызывающий обязан вызвать Release.
func (s *TempStore) Open(outputName string) (*Workspace, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.baseDir, "signal-optimizer", id)

	s.logger.Debugf("Создаем временную директорию: %s", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Errorf("Ошибка создания директории %s: %v", dir, err)
		return nil, fmt.Errorf("failed to create request directory: %w", err)
	}

	if outputName == "" {
		outputName = "output.csv"
	}
	return &Workspace{
		ID:         id,
		Dir:        dir,
		InputPath:  filepath.Join(dir, "input.csv"),
		OutputPath: filepath.Join(dir, filepath.Base(outputName)),
		logger:     s.logger,
	}, nil
}

// SaveInput копирует загруженные данные во входной файл
func (w *Workspace) SaveInput(data io.Reader) (int64, error) {
	file, err := os.Create(w.InputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create input file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, data)
	if err != nil {
		return 0, fmt.Errorf("failed to write input data: %w", err)
	}

	w.logger.Debugf("Входной файл сохранен: %s (записано %d байт)", w.InputPath, written)
	return written, nil
}

// Release удаляет директорию запроса вместе с файлами
func (w *Workspace) Release() {
	if err := os.RemoveAll(w.Dir); err != nil {
		w.logger.Warnf("Не удалось удалить временную директорию %s: %v", w.Dir, err)
		return
	}
	w.logger.Debugf("Временная директория %s удалена", w.Dir)
}
