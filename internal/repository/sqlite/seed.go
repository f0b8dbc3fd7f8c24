package sqlite

import (
	"context"
	"fmt"

	"github.com/forgeworld/forge/internal/model"
)

// starterRepo is the seed-time shape of a repository: a name, a blurb, and
// whether it belongs to the pinned reconnaissance library.
type starterRepo struct {
	name        string
	description string
	language    string
	stars       int
	forks       int
	owner       string
	pinned      bool
}

// starterRepos is the catalogue inserted on first boot. The pinned entries
// form the reconnaissance library surfaced on the dashboard.
var starterRepos = []starterRepo{
	{"subfinder", "Fast passive subdomain enumeration tool.", "Go", 6500, 1200, "projectdiscovery", true},
	{"assetfinder", "Find domains and subdomains related to a given domain.", "Go", 3200, 600, "tomnomnom", true},
	{"amass", "In-depth attack surface mapping and asset discovery.", "Go", 10800, 1950, "owasp-amass", true},
	{"gobuster", "Directory, DNS and vhost busting tool written in Go.", "Go", 9200, 1500, "OJ", true},
	{"ffuf", "Fast web fuzzer written in Go.", "Go", 10500, 1850, "ffuf", true},
	{"httpx", "Fast and multi-purpose HTTP toolkit.", "Go", 5800, 900, "projectdiscovery", true},
	{"katana", "A next-generation crawling and spidering framework.", "Go", 4500, 800, "projectdiscovery", true},
	{"spiderfoot", "OSINT automation tool.", "Python", 10200, 2100, "smicallef", true},
	{"recon-ng", "Full-featured reconnaissance framework.", "Python", 9500, 2300, "lanmaster53", true},
	{"theharvester", "E-mails, subdomains and names harvester.", "Python", 8500, 2000, "laramies", true},
	{"sherlock", "Hunt down social media accounts by username.", "Python", 46000, 5800, "sherlock-project", true},
	{"trufflehog", "Find credentials and secrets in git repositories.", "Go", 15500, 1800, "trufflesecurity", true},
	{"gitleaks", "Scan git repos for secrets using regex and entropy.", "Go", 16200, 1900, "zricethezav", true},
	{"naabu", "A fast port scanner written in Go.", "Go", 4200, 650, "projectdiscovery", true},
	{"rustscan", "The modern port scanner.", "Rust", 9500, 1150, "rustscan", true},
	{"uncover", "Quickly discover exposed assets using search engines.", "Go", 1300, 180, "projectdiscovery", true},

	{"nmap", "Network mapper for discovery and auditing.", "C++", 8200, 2100, "nmap", false},
	{"metasploit-framework", "Exploitation framework.", "Ruby", 31500, 12400, "rapid7", false},
	{"wireshark", "Network protocol analyzer.", "C", 2500, 800, "wireshark", false},
	{"sqlmap", "Automatic SQL injection tool.", "Python", 29000, 5200, "sqlmapproject", false},
	{"nuclei", "Template-based vulnerability scanner.", "Go", 18000, 2500, "projectdiscovery", false},
	{"hashcat", "Advanced password recovery utility.", "C", 18400, 3100, "hashcat", false},
	{"feroxbuster", "Recursive content discovery tool.", "Rust", 5400, 750, "epi052", false},
	{"seclists", "Wordlists for security assessments.", "Shell", 53000, 15200, "danielmiessler", false},
}

// Seed populates an empty repositories table with the starter catalogue and
// records a SYSTEM audit entry. It is a no-op when any repository already
// exists, so restarting never duplicates data. Returns how many repositories
// were inserted.
func (db *DB) Seed(ctx context.Context) (int, error) {
	stats, err := db.RepoStats(ctx)
	if err != nil {
		return 0, err
	}
	if stats.Count > 0 {
		return 0, nil
	}

	for _, s := range starterRepos {
		repo := &model.Repository{
			Name:        s.name,
			Description: s.description,
			Language:    s.language,
			Stars:       s.stars,
			Forks:       s.forks,
			Owner:       s.owner,
			Pinned:      s.pinned,
		}
		if err := db.CreateRepo(ctx, repo); err != nil {
			return 0, fmt.Errorf("sqlite: seeding repository %s: %w", s.name, err)
		}
	}

	entry := &model.AuditLog{
		Type:    model.LogSystem,
		Message: fmt.Sprintf("seeded %d starter repositories", len(starterRepos)),
	}
	if err := db.AppendAuditLog(ctx, entry); err != nil {
		return 0, err
	}

	return len(starterRepos), nil
}
