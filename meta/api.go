// Package meta talks to the remote metadata services: the Mojang version
// manifest, the Fabric and Quilt meta APIs, the Forge promotions index and
// the NeoForge releases listing.
package meta

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/breraud/fastMC/structs"
)

// parseLoaderProfile decodes a Fabric/Quilt style profile document into
// the normalized LoaderProfile. Libraries without an explicit URL fall
// back to defaultMaven. Argument arrays may mix strings with rule
// objects; only plain strings are taken.
func parseLoaderProfile(body []byte, defaultMaven string) (structs.LoaderProfile, error) {
	var doc struct {
		MainClass string `json:"mainClass"`
		Libraries []struct {
			Name string `json:"name"`
			Url  string `json:"url"`
		} `json:"libraries"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return structs.LoaderProfile{}, fmt.Errorf("failed to parse loader profile: %s", err.Error())
	}

	profile := structs.LoaderProfile{
		MainClass: doc.MainClass,
		JvmArgs:   StringArguments(body, "arguments.jvm"),
		GameArgs:  StringArguments(body, "arguments.game"),
	}
	for _, lib := range doc.Libraries {
		url := lib.Url
		if url == "" {
			url = defaultMaven
		}
		profile.Libraries = append(profile.Libraries, structs.LoaderLibrary{Name: lib.Name, Url: url})
	}
	return profile, nil
}

// StringArguments pulls the plain-string entries of an argument array out
// of a raw version document, skipping the rule-object entries some
// documents carry.
func StringArguments(doc []byte, path string) []string {
	var args []string
	for _, v := range gjson.GetBytes(doc, path).Array() {
		if v.Type == gjson.String {
			args = append(args, v.String())
		}
	}
	return args
}
