package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are the tunable donation policies. Unlike Config they can change
// at runtime: the holder watches the settings file and swaps atomically.
type Settings struct {
	// RefundReversesCampaignTotals controls whether refunding a succeeded
	// donation decrements the campaign's raised amount and donor count.
	// The completed status of a campaign is never reverted either way.
	RefundReversesCampaignTotals bool `mapstructure:"refundReversesCampaignTotals"`

	// Donor segment thresholds in minor currency units.
	MajorDonorThreshold    int64 `mapstructure:"majorDonorThreshold"`
	ChampionDonorThreshold int64 `mapstructure:"championDonorThreshold"`

	NotificationsEnabled bool `mapstructure:"notificationsEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		RefundReversesCampaignTotals: false,
		MajorDonorThreshold:          100_000,   // $1,000
		ChampionDonorThreshold:       1_000_000, // $10,000
		NotificationsEnabled:         true,
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

func NewSettingsHolder(log *zap.Logger) (*SettingsHolder, error) {
	log = log.Named("donation.settings")
	v := viper.New()

	v.SetConfigName("donations")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/givebridge/config")
	v.AddConfigPath("/etc/givebridge")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GIVEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("donations.refundReversesCampaignTotals", defaults.RefundReversesCampaignTotals)
	v.SetDefault("donations.majorDonorThreshold", defaults.MajorDonorThreshold)
	v.SetDefault("donations.championDonorThreshold", defaults.ChampionDonorThreshold)
	v.SetDefault("donations.notificationsEnabled", defaults.NotificationsEnabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var settings Settings
	if err := v.UnmarshalKey("donations", &settings); err != nil {
		return nil, err
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	holder := &SettingsHolder{}
	holder.current.Store(settings)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("donations", &updated); err != nil {
			log.Warn("settings reload failed", zap.Error(err))
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Warn("invalid settings ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticSettings builds a holder with fixed settings, for tests.
func NewStaticSettings(settings Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func validateSettings(settings Settings) error {
	if settings.MajorDonorThreshold < 0 || settings.ChampionDonorThreshold < 0 {
		return errors.New("donations: segment thresholds cannot be negative")
	}
	if settings.ChampionDonorThreshold < settings.MajorDonorThreshold {
		return errors.New("donations: championDonorThreshold must be >= majorDonorThreshold")
	}
	return nil
}
