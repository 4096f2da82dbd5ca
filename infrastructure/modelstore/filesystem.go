package modelstore

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	modelFileName    = "regression_model.json"
	metadataFileName = "model_meta.json"
)

// FilesystemStore guarda o modelo e os metadados como JSON em um diretório.
type FilesystemStore struct {
	dir string
}

func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "erro ao criar diretório do modelo")
	}
	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) Exists() (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, modelFileName))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "erro ao verificar artefato do modelo")
	}
	return true, nil
}

func (s *FilesystemStore) LoadModel() (*domain.RegressionModel, error) {
	model := &domain.RegressionModel{}
	if err := s.read(modelFileName, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (s *FilesystemStore) SaveModel(model *domain.RegressionModel) error {
	return s.write(modelFileName, model)
}

func (s *FilesystemStore) LoadMetadata() (*domain.ModelMetadata, error) {
	metadata := &domain.ModelMetadata{}
	if err := s.read(metadataFileName, metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (s *FilesystemStore) SaveMetadata(metadata *domain.ModelMetadata) error {
	return s.write(metadataFileName, metadata)
}

func (s *FilesystemStore) read(name string, out interface{}) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return errors.Wrapf(err, "erro ao ler %s", name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "erro ao decodificar %s", name)
	}
	return nil
}

// write grava em arquivo temporário e renomeia: rename é atômico no mesmo
// filesystem, então um predict concorrente nunca lê um artefato pela metade.
func (s *FilesystemStore) write(name string, in interface{}) error {
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "erro ao serializar %s", name)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "erro ao criar arquivo temporário para %s", name)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "erro ao gravar %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "erro ao fechar arquivo temporário de %s", name)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "erro ao substituir %s", name)
	}

	return nil
}
