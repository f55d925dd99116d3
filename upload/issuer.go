// Package upload issues signatures that let the browser upload straight to
// the storage provider without ever seeing the API secret.
package upload

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/cloudinary"
	"github.com/jmanurodriguez/cloudinary-portal/gateway"
)

// Signer computes provider signatures. *cloudinary.Client implements it.
type Signer interface {
	Sign(params url.Values) (string, error)
	CloudName() string
	APIKey() string
}

type Signature struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	CloudName    string `json:"cloudName"`
	APIKey       string `json:"apiKey"`
	Folder       string `json:"folder"`
	ResourceType string `json:"resource_type"`
}

type Issuer struct {
	signer Signer
	now    func() time.Time
}

func NewIssuer(signer Signer) *Issuer {
	return &Issuer{signer: signer, now: time.Now}
}

func ProvideIssuer(client *cloudinary.Client) *Issuer {
	return NewIssuer(client)
}

var resourceTypes = map[string]bool{
	string(cloudinary.Auto):  true,
	string(cloudinary.Image): true,
	string(cloudinary.Video): true,
	string(cloudinary.Raw):   true,
}

// Issue signs {folder, resource_type, timestamp}. The upload request must
// present exactly these values for the provider to accept it.
func (i *Issuer) Issue(folder, resourceType string) (*Signature, error) {
	if folder == "" {
		return nil, api.Validation("El nombre de carpeta es requerido", "")
	}
	if !gateway.ValidFolderName(folder) {
		return nil, api.Validation("Nombre de carpeta inválido",
			"El nombre debe contener solo letras, números, guiones y guiones bajos (máximo 100 caracteres)")
	}
	if resourceType == "" {
		resourceType = string(cloudinary.Auto)
	}
	if !resourceTypes[resourceType] {
		return nil, api.Validation("Tipo de recurso inválido",
			fmt.Sprintf("resource_type debe ser auto, image, video o raw, se recibió %q", resourceType))
	}

	cloudName, apiKey := i.signer.CloudName(), i.signer.APIKey()
	if cloudName == "" || apiKey == "" {
		return nil, api.Internal("Error al generar la firma de subida",
			fmt.Errorf("cloudinary credentials are not configured"))
	}

	timestamp := i.now().Unix()
	signature, err := i.signer.Sign(url.Values{
		"folder":        {folder},
		"resource_type": {resourceType},
		"timestamp":     {strconv.FormatInt(timestamp, 10)},
	})
	if err != nil {
		return nil, api.Internal("Error al generar la firma de subida", err)
	}

	return &Signature{
		Signature:    signature,
		Timestamp:    timestamp,
		CloudName:    cloudName,
		APIKey:       apiKey,
		Folder:       folder,
		ResourceType: resourceType,
	}, nil
}
