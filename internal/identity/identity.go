package identity

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Faces 是固定的头像字母表，每个字母对应字体里的一张脸
const Faces = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Identity 是跨对局持久化的玩家身份。
// PlayerID 首次使用时生成，之后永不改变；Name 和 Face 保存上一次的选择。
type Identity struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Face     string `json:"face"`
}

// Store 是身份的持久化能力，注入给需要的组件，便于测试替换
type Store interface {
	Load() (Identity, error)
	Save(ident Identity) error
}

// LoadOrCreate 读取已保存的身份，缺失的字段按"首次使用"补全并写回
func LoadOrCreate(store Store) (Identity, error) {
	ident, err := store.Load()
	if err != nil {
		return Identity{}, err
	}

	changed := false

	if ident.PlayerID == "" {
		ident.PlayerID = GenID()
		changed = true
	}

	if ident.Face == "" || !strings.Contains(Faces, ident.Face) {
		ident.Face = RandomFace()
		changed = true
	}

	if changed {
		if err := store.Save(ident); err != nil {
			return Identity{}, err
		}
	}

	return ident, nil
}

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

func RandomFace() string {
	return string(Faces[rand.IntN(len(Faces))])
}

// NextFace 返回字母表中的下一张脸（循环）
func NextFace(face string) string {
	i := strings.Index(Faces, face)
	if i < 0 {
		return string(Faces[0])
	}

	return string(Faces[(i+1)%len(Faces)])
}

type fileStore struct {
	path string
}

// NewFileStore 返回以 JSON 文件保存身份的 Store，文件位于数据目录下
func NewFileStore(dataDir string) Store {
	return &fileStore{path: filepath.Join(dataDir, "identity.json")}
}

func (fs *fileStore) Load() (Identity, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, nil
		}

		return Identity{}, err
	}

	var ident Identity

	if err := json.Unmarshal(data, &ident); err != nil {
		// 文件损坏按首次使用处理，而不是让客户端无法启动
		return Identity{}, nil
	}

	return ident, nil
}

func (fs *fileStore) Save(ident Identity) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(ident, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fs.path, data, 0o600)
}

type memStore struct {
	ident Identity
}

// NewMemStore 返回仅存于内存的 Store，供测试使用
func NewMemStore() Store {
	return &memStore{}
}

func (ms *memStore) Load() (Identity, error) {
	return ms.ident, nil
}

func (ms *memStore) Save(ident Identity) error {
	ms.ident = ident
	return nil
}
