package judge

import "github.com/algoprep/backend/internal/domain"

// languageSpec describes how one supported language is written, compiled and
// run inside the sandbox. Paths are relative to the mount point /code.
type languageSpec struct {
	sourceFile string
	image      string
	compileCmd []string // nil when the language needs no compile step
	runCmd     []string
}

var languageSpecs = map[domain.Language]languageSpec{
	domain.LanguageJavaScript: {
		sourceFile: "solution.js",
		image:      "node:20-slim",
		runCmd:     []string{"node", "/code/solution.js"},
	},
	domain.LanguagePython: {
		sourceFile: "solution.py",
		image:      "python:3.12-slim",
		runCmd:     []string{"python3", "/code/solution.py"},
	},
	domain.LanguageJava: {
		sourceFile: "Solution.java",
		image:      "eclipse-temurin:21-jdk",
		compileCmd: []string{"javac", "/code/Solution.java"},
		runCmd:     []string{"java", "-cp", "/code", "Solution"},
	},
	domain.LanguageCPP: {
		sourceFile: "solution.cpp",
		image:      "gcc:13",
		compileCmd: []string{"g++", "-std=c++20", "-O2", "-o", "/code/solution", "/code/solution.cpp"},
		runCmd:     []string{"/code/solution"},
	},
}

// specFor returns the execution spec for a language
func specFor(language domain.Language) (languageSpec, error) {
	spec, ok := languageSpecs[language]
	if !ok {
		return languageSpec{}, domain.ErrUnsupportedLanguage
	}
	return spec, nil
}

// Images returns the container images the Docker executor depends on
func Images() []string {
	images := make([]string, 0, len(languageSpecs))
	for _, spec := range languageSpecs {
		images = append(images, spec.image)
	}
	return images
}
