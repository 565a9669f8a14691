package devpod

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/itme/solidacl/internal/rdf"
	"github.com/itme/solidacl/internal/store"
)

// SeedFile declares the resources and ACL documents a dev pod starts with.
//
//	resources:
//	  - path: /alice/
//	    container: true
//	    acl:
//	      rules:
//	        - agents: ["https://alice.example/profile#me"]
//	          modes: [read, write, control]
//	          resource: true
//	          default: true
//	  - path: /alice/notes.txt
type SeedFile struct {
	Resources []SeedResource `yaml:"resources"`
}

type SeedResource struct {
	Path      string   `yaml:"path"`
	Container bool     `yaml:"container"`
	HideACL   bool     `yaml:"hideAcl"`
	Forbidden bool     `yaml:"forbidden"`
	ACL       *SeedACL `yaml:"acl"`
}

type SeedACL struct {
	Rules []SeedRule `yaml:"rules"`
}

type SeedRule struct {
	Agents        []string `yaml:"agents"`
	Groups        []string `yaml:"groups"`
	Public        bool     `yaml:"public"`
	Authenticated bool     `yaml:"authenticated"`
	Modes         []string `yaml:"modes"`
	Resource      bool     `yaml:"resource"`
	Default       bool     `yaml:"default"`
}

// SeedFromFile loads a YAML fixture into the store. Rule targets are minted
// against the pod's base URL.
func SeedFromFile(ctx context.Context, st *store.Store, baseURL, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return Seed(ctx, st, baseURL, &seed)
}

// Seed loads a fixture into the store.
func Seed(ctx context.Context, st *store.Store, baseURL string, seed *SeedFile) error {
	baseURL = strings.TrimSuffix(baseURL, "/")

	for _, res := range seed.Resources {
		if !strings.HasPrefix(res.Path, "/") {
			return fmt.Errorf("seed resource %q: path must start with /", res.Path)
		}
		isContainer := res.Container || strings.HasSuffix(res.Path, "/")
		err := st.UpsertResource(ctx, &store.Resource{
			Path:        res.Path,
			IsContainer: isContainer,
			ACLVisible:  !res.HideACL,
			Forbidden:   res.Forbidden,
		})
		if err != nil {
			return err
		}

		if res.ACL == nil {
			continue
		}
		aclPath := ACLPathOf(res.Path)
		triples, err := seedTriples(baseURL, res.Path, aclPath, res.ACL)
		if err != nil {
			return fmt.Errorf("seed acl for %q: %w", res.Path, err)
		}
		if err := st.PutDocument(ctx, aclPath, triples); err != nil {
			return err
		}
		slog.Debug("seeded acl", "resource", res.Path, "statements", len(triples))
	}

	slog.Info("seeded", "resources", len(seed.Resources))
	return nil
}

func seedTriples(baseURL, resourcePath, aclPath string, acl *SeedACL) ([]rdf.Triple, error) {
	target := baseURL + resourcePath
	var out []rdf.Triple

	for i, rule := range acl.Rules {
		subject := rdf.IRI(fmt.Sprintf("%s%s#rule-%d", baseURL, aclPath, i))
		emit := func(predicate, object string) {
			out = append(out, rdf.Triple{
				Subject:   subject,
				Predicate: rdf.IRI(predicate),
				Object:    rdf.IRI(object),
			})
		}

		emit(rdf.RDFType, rdf.ACLAuthorization)
		if rule.Resource {
			emit(rdf.ACLAccessTo, target)
		}
		if rule.Default {
			emit(rdf.ACLDefault, target)
		}
		for _, agent := range rule.Agents {
			emit(rdf.ACLAgent, agent)
		}
		for _, group := range rule.Groups {
			emit(rdf.ACLAgentGroup, group)
		}
		if rule.Public {
			emit(rdf.ACLAgentClass, rdf.FOAFAgent)
		}
		if rule.Authenticated {
			emit(rdf.ACLAgentClass, rdf.ACLAuthenticatedAgent)
		}
		for _, mode := range rule.Modes {
			iri, err := modeIRI(mode)
			if err != nil {
				return nil, err
			}
			emit(rdf.ACLMode, iri)
		}
	}
	return out, nil
}

func modeIRI(mode string) (string, error) {
	switch strings.ToLower(mode) {
	case "read":
		return rdf.ModeRead, nil
	case "append":
		return rdf.ModeAppend, nil
	case "write":
		return rdf.ModeWrite, nil
	case "control":
		return rdf.ModeControl, nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}
