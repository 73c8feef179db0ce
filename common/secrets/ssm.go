package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the subset of the SSM client the provider uses.
type ssmAPI interface {
	GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
}

// SSMProvider reads secrets from AWS Systems Manager Parameter Store.
type SSMProvider struct {
	client ssmAPI
}

// NewSSMProvider creates a provider backed by the given SSM client.
func NewSSMProvider(client ssmAPI) *SSMProvider {
	return &SSMProvider{client: client}
}

// Get fetches and decrypts the named parameter. Any backing failure or an
// absent value is reported as ErrUnavailable.
func (p *SSMProvider) Get(ctx context.Context, name string) (string, error) {
	out, err := p.client.GetParameter(ctx, &awsssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("%w: get parameter %q: %v", ErrUnavailable, name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: parameter %q has no value", ErrUnavailable, name)
	}
	return *out.Parameter.Value, nil
}
