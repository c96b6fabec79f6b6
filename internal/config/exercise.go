package config

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/tidwall/gjson"

	gerrors "github.com/NicabarNimble/go-gitmastery/internal/errors"
)

// ExerciseFileName marks the root of a downloaded exercise
const ExerciseFileName = ".gitmastery-exercise.json"

// ExerciseName reads exercise_name from the exercise config file at name on fs
func ExerciseName(fs billy.Filesystem, name string) (string, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return "", gerrors.NewKind(gerrors.KindConfig, "load exercise config", err)
	}
	if !gjson.ValidBytes(data) {
		return "", gerrors.NewKind(gerrors.KindConfig, "load exercise config",
			fmt.Errorf("%s is not valid JSON", ExerciseFileName))
	}
	v := gjson.GetBytes(data, "exercise_name")
	if v.Type != gjson.String || v.Str == "" {
		return "", gerrors.NewKind(gerrors.KindConfig, "load exercise config",
			fmt.Errorf("%s has no exercise_name", ExerciseFileName))
	}
	return v.Str, nil
}
