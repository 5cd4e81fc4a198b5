package selector

import "github.com/verte-zerg/secprep/internal/model"

// DefaultWeights is the exam domain distribution in declared order.
var DefaultWeights = []model.DomainWeight{
	{Name: "Threats, Attacks and Vulnerabilities", Weight: 12},
	{Name: "Identity and Access Management", Weight: 22},
	{Name: "Technologies and Tools", Weight: 15},
	{Name: "Risk Management", Weight: 16},
	{Name: "Architecture and Design", Weight: 14},
	{Name: "Cryptography and PKI", Weight: 12},
}
