package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document loaded by `restaurant-api seed`.
type Seed struct {
	Admin *struct {
		Email    string `yaml:"email"`
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Categories []string `yaml:"categories"`
	Menu       []struct {
		Name            string  `yaml:"name"`
		Description     string  `yaml:"description"`
		Price           float64 `yaml:"price"`
		Category        string  `yaml:"category"`
		PreparationTime int     `yaml:"preparationTime"`
	} `yaml:"menu"`
	DeliveryZones []struct {
		Name          string  `yaml:"name"`
		DeliveryFee   float64 `yaml:"deliveryFee"`
		EstimatedTime int     `yaml:"estimatedTime"`
		Status        string  `yaml:"status"`
	} `yaml:"deliveryZones"`
	Tables []struct {
		TableNo  int    `yaml:"tableNo"`
		Capacity int    `yaml:"capacity"`
		Location string `yaml:"location"`
	} `yaml:"tables"`
	OperatingHours []struct {
		Day    int    `yaml:"day"` // 0 = Sunday
		Open   string `yaml:"open"`
		Close  string `yaml:"close"`
		IsOpen bool   `yaml:"isOpen"`
	} `yaml:"operatingHours"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("cant unmarshal seed: %w", err)
	}
	for _, h := range seed.OperatingHours {
		if h.Day < 0 || h.Day > 6 {
			return nil, fmt.Errorf("operating hours: day %d out of range 0..6", h.Day)
		}
	}
	for _, z := range seed.DeliveryZones {
		if z.DeliveryFee < 0 {
			return nil, fmt.Errorf("delivery zone %q: negative fee", z.Name)
		}
	}
	return &seed, nil
}
