package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// HelloWorldSpec defines the desired workload.
type HelloWorldSpec struct {
	// Name identifies the StatefulSet, its container and the app label
	// +kubebuilder:validation:MinLength=1
	// +kubebuilder:validation:Pattern=`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`
	Name string `json:"name"`

	// Image is the container image of the workload
	// +kubebuilder:validation:MinLength=1
	Image string `json:"image"`

	// Data is the bootstrap payload written into every new pod. Its presence
	// in the pod log marks the pod as bootstrapped.
	// +optional
	Data string `json:"data,omitempty"`

	// Replicas is the desired number of pods
	// +kubebuilder:validation:Minimum=0
	Replicas int32 `json:"replicas"`
}

// HelloWorldStatus is intentionally empty: the live StatefulSet is the only
// source of truth for observed state.
type HelloWorldStatus struct{}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=hw
// +kubebuilder:printcolumn:name="Workload",type=string,JSONPath=`.spec.name`
// +kubebuilder:printcolumn:name="Image",type=string,JSONPath=`.spec.image`
// +kubebuilder:printcolumn:name="Replicas",type=integer,JSONPath=`.spec.replicas`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// HelloWorld is the Schema for the helloworlds API.
type HelloWorld struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   HelloWorldSpec   `json:"spec,omitempty"`
	Status HelloWorldStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// HelloWorldList contains a list of HelloWorld.
type HelloWorldList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []HelloWorld `json:"items"`
}
