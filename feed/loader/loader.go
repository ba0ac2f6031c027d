// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package loader reads feed formulations from YAML, TOML or JSON files.
//
// A table lists its nutrients once; every ingredient gives its values in that order:
//
//	name: grower
//	nutrients: [CP, DE, Ca, P]
//	ingredients:
//	  - {name: corn, cost: 2.8, values: [9.5, 14.2, 0.02, 0.25]}
//	requirements:
//	  - {nutrient: CP, min: 14.0}
//
// An ingredient with fewer values than nutrients leaves the trailing nutrients undefined.
package loader

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	log "github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/agroformula/feedmix/feed"
)

type ingredient struct {
	Name   string    `mapstructure:"name" validate:"required"`
	Cost   float64   `mapstructure:"cost"`
	Values []float64 `mapstructure:"values"`
}

type requirement struct {
	Nutrient string  `mapstructure:"nutrient" validate:"required"`
	Min      float64 `mapstructure:"min"`
}

type table struct {
	Name         string        `mapstructure:"name"`
	Nutrients    []string      `mapstructure:"nutrients" validate:"unique,dive,required"`
	Ingredients  []ingredient  `mapstructure:"ingredients" validate:"required,min=1,dive"`
	Requirements []requirement `mapstructure:"requirements" validate:"dive"`
}

var validate = validator.New()

// Load reads the formulation table at `path`. The format follows the file extension. The
// returned formulation has been validated with feed.Formulation.Validate.
func Load(path string) (*feed.Formulation, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var t table
	if err := v.Unmarshal(&t); err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", path, err, feed.ErrInvalidFormulation)
	}
	if err := validate.Struct(&t); err != nil {
		return nil, fmt.Errorf("validating %s: %v: %w", path, err, feed.ErrInvalidFormulation)
	}

	f, err := t.formulation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.V(1).Infof("loader: read %q from %s: %d ingredients, %d requirements", f.Name, path, len(f.Ingredients), len(f.Requirements))
	return f, nil
}

func (t *table) formulation() (*feed.Formulation, error) {
	f := &feed.Formulation{Name: t.Name}
	for _, ing := range t.Ingredients {
		if len(ing.Values) > len(t.Nutrients) {
			return nil, fmt.Errorf("ingredient %q has %d values for %d nutrients: %w", ing.Name, len(ing.Values), len(t.Nutrients), feed.ErrInvalidFormulation)
		}
		nutrients := make(map[feed.Nutrient]float64, len(ing.Values))
		for k, val := range ing.Values {
			nutrients[feed.Nutrient(t.Nutrients[k])] = val
		}
		f.Ingredients = append(f.Ingredients, feed.Ingredient{Name: ing.Name, Cost: ing.Cost, Nutrients: nutrients})
	}
	for _, r := range t.Requirements {
		f.Requirements = append(f.Requirements, feed.Requirement{Nutrient: feed.Nutrient(r.Nutrient), Min: r.Min})
	}
	return f, nil
}
