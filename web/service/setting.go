package service

import (
	"strconv"
	"time"

	"schooldesk/database"
	"schooldesk/database/model"
	"schooldesk/util/common"
	"schooldesk/util/random"
	"schooldesk/web/entity"

	"gorm.io/gorm"
)

var defaultValueMap = map[string]string{
	"webListen":     "",
	"webPort":       "8080",
	"webBasePath":   "/",
	"sessionMaxAge": "60",
	"secret":        "",
	"timeLocation":  "UTC",
}

// SettingService persists panel settings as key/value rows, falling back to
// defaults for keys that were never saved.
type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	setting := &model.Setting{}
	err := s.db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		return s.db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return s.db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if basePath == "" {
		basePath = "/"
	}
	return basePath, nil
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

// GetSecret returns the session signing secret, generating and persisting one
// on first use so sessions survive restarts.
func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if err != nil {
		return nil, err
	}
	if secret == "" {
		secret = random.Seq(32)
		if err := s.saveSetting("secret", secret); err != nil {
			return nil, err
		}
	}
	return []byte(secret), nil
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		location, err = time.LoadLocation(defaultLocation)
	}
	return location, err
}

// GetAllSetting collects the persisted settings into one struct for the CLI.
func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	listen, err := s.GetListen()
	if err != nil {
		return nil, err
	}
	port, err := s.GetPort()
	if err != nil {
		return nil, err
	}
	basePath, err := s.GetBasePath()
	if err != nil {
		return nil, err
	}
	maxAge, err := s.GetSessionMaxAge()
	if err != nil {
		return nil, err
	}
	timeLocation, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	return &entity.AllSetting{
		WebListen:     listen,
		WebPort:       port,
		WebBasePath:   basePath,
		SessionMaxAge: maxAge,
		TimeLocation:  timeLocation,
	}, nil
}

// ResetSettings drops every saved setting, restoring defaults. The session
// secret is regenerated on next start, invalidating existing sessions.
func (s *SettingService) ResetSettings() error {
	return s.db.Where("1 = 1").Delete(model.Setting{}).Error
}
